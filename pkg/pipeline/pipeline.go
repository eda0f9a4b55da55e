// Package pipeline provides the layout comparison pipeline for graphmorph.
//
// This package implements the complete build → layout → unify → render
// pipeline that is used by both the CLI and the preview server. By
// centralising this logic, both entry points share defaults, validation and
// caching.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Build: Turn raw edge and node records into a network with module labels
//  2. Layout: Compute one coordinate table per requested layout
//  3. Unify: Merge the tables into long-form node and edge tables
//  4. Render: Produce artifacts (comparison panels, animation, tables)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Layouts: []string{"circle", "kk", "tree"},
//	    Formats: []string{"gif", "svg"},
//	}
//	result, err := runner.Execute(ctx, input, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gif := result.Artifacts["gif"]
//
// Stages can also be run on their own with [Runner.Build],
// [Runner.ComputeLayouts], [Unify] and [Runner.Render].
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/graphmorph/pkg/cache"
	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/frames"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/network"
	"github.com/matzehuels/graphmorph/pkg/table"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultSeed seeds the stochastic layout engines.
	DefaultSeed = uint64(42)

	// DefaultWidth is the default GIF width in pixels.
	DefaultWidth = 800

	// DefaultHeight is the default GIF height in pixels.
	DefaultHeight = 600

	// DefaultPanelSize is the default side length of one comparison panel.
	DefaultPanelSize = 320.0

	// DefaultColumns is the default number of panels per row.
	DefaultColumns = 3

	// DefaultPNGScale is the rasterisation scale for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatGIF  = "gif"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatGIF:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatHTML: true,
	FormatJSON: true,
	FormatCSV:  true,
}

// DefaultFormats are rendered when no format is requested.
var DefaultFormats = []string{FormatGIF, FormatSVG}

// ArtifactNames returns the artifact keys a format produces. Every format
// yields one artifact named after itself, except csv which yields the node
// and edge tables separately.
func ArtifactNames(format string) []string {
	if format == FormatCSV {
		return []string{"nodes.csv", "edges.csv"}
	}
	return []string{format}
}

// =============================================================================
// Duration
// =============================================================================

// Duration is a time.Duration that reads and writes as a string such as
// "1.5s" in JSON, TOML and YAML.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// NewDuration returns a pointer to d, for the optional duration fields of
// [Options].
func NewDuration(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

// durationOr returns *d, or def when d is nil.
func durationOr(d *Duration, def time.Duration) time.Duration {
	if d == nil {
		return def
	}
	return time.Duration(*d)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It is read from JSON
// API requests and from TOML or YAML configuration files.
type Options struct {
	// Build options
	Modules       network.Partition `json:"modules,omitempty" toml:"modules" yaml:"modules"`
	StrictModules bool              `json:"strict_modules,omitempty" toml:"strict_modules" yaml:"strict_modules"`

	// Layout options
	Layouts  []string `json:"layouts,omitempty" toml:"layouts" yaml:"layouts"`
	Seed     uint64   `json:"seed,omitempty" toml:"seed" yaml:"seed"`
	Parallel bool     `json:"parallel,omitempty" toml:"parallel" yaml:"parallel"`

	// Animation options. Hold and Transition are pointers so that an
	// explicit zero (a hard cut) is told apart from unset.
	Order      []string  `json:"order,omitempty" toml:"order" yaml:"order"`
	Hold       *Duration `json:"hold,omitempty" toml:"hold" yaml:"hold"`
	Transition *Duration `json:"transition,omitempty" toml:"transition" yaml:"transition"`
	FPS        int       `json:"fps,omitempty" toml:"fps" yaml:"fps"`
	NoWrap     bool      `json:"no_wrap,omitempty" toml:"no_wrap" yaml:"no_wrap"`
	Easing     string    `json:"easing,omitempty" toml:"easing" yaml:"easing"`
	Width      int       `json:"width,omitempty" toml:"width" yaml:"width"`
	Height     int       `json:"height,omitempty" toml:"height" yaml:"height"`

	// Comparison options
	PanelSize float64 `json:"panel_size,omitempty" toml:"panel_size" yaml:"panel_size"`
	Columns   int     `json:"columns,omitempty" toml:"columns" yaml:"columns"`
	Labels    bool    `json:"labels,omitempty" toml:"labels" yaml:"labels"`
	Title     string  `json:"title,omitempty" toml:"title" yaml:"title"`
	// NodeRadius and PanelPadding fall back to the renderer defaults when 0.
	NodeRadius   float64 `json:"node_radius,omitempty" toml:"node_radius" yaml:"node_radius"`
	PanelPadding float64 `json:"panel_padding,omitempty" toml:"panel_padding" yaml:"panel_padding"`

	// Render options
	Formats []string `json:"formats,omitempty" toml:"formats" yaml:"formats"`
	Refresh bool     `json:"refresh,omitempty" toml:"refresh" yaml:"refresh"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-" yaml:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and in the preview server.
	RunID string

	// Network is the built input network.
	Network *network.Network

	// Tables are the unified node and edge tables.
	Tables *table.Unified

	// Animation is the frame sequence. It is nil unless a gif was requested.
	Animation *frames.Animation

	// Artifacts contains rendered outputs keyed by [ArtifactNames].
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int           `json:"node_count"`
	EdgeCount   int           `json:"edge_count"`
	LayoutCount int           `json:"layout_count"`
	FrameCount  int           `json:"frame_count,omitempty"`
	BuildTime   time.Duration `json:"build_time"`
	LayoutTime  time.Duration `json:"layout_time"`
	UnifyTime   time.Duration `json:"unify_time"`
	RenderTime  time.Duration `json:"render_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHits int  `json:"layout_hits"` // Layout tables loaded from cache
	RenderHit  bool `json:"render_hit"`  // Whether all artifacts came from cache
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return gmerrors.Invalid("format", format, "must be one of: %s", strings.Join(formatList(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatList() []string {
	out := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero-valued fields. It is idempotent.
func (o *Options) SetDefaults() {
	if len(o.Layouts) == 0 {
		o.Layouts = layout.Names()
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Hold == nil {
		o.Hold = NewDuration(frames.DefaultHold)
	}
	if o.Transition == nil {
		o.Transition = NewDuration(frames.DefaultTransition)
	}
	if o.FPS == 0 {
		o.FPS = frames.DefaultFPS
	}
	if o.Easing == "" {
		o.Easing = string(frames.EaseCubicInOut)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.PanelSize == 0 {
		o.PanelSize = DefaultPanelSize
	}
	if o.Columns == 0 {
		o.Columns = DefaultColumns
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Validate checks option values. Call SetDefaults first.
func (o *Options) Validate() error {
	if err := o.Modules.Validate(); err != nil {
		return gmerrors.Invalid("modules", "", "%v", err)
	}
	if _, err := o.LayoutNames(); err != nil {
		return err
	}
	if _, err := o.FrameOptions(); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 {
		return gmerrors.Invalid("size", fmt.Sprintf("%dx%d", o.Width, o.Height), "must not be negative")
	}
	if o.PanelSize < 0 {
		return gmerrors.Invalid("panel_size", fmt.Sprint(o.PanelSize), "must not be negative")
	}
	if o.Columns < 0 {
		return gmerrors.Invalid("columns", fmt.Sprint(o.Columns), "must not be negative")
	}
	if o.NodeRadius < 0 {
		return gmerrors.Invalid("node_radius", fmt.Sprint(o.NodeRadius), "must not be negative")
	}
	if o.PanelPadding < 0 || o.PanelPadding >= 0.5 {
		return gmerrors.Invalid("panel_padding", fmt.Sprint(o.PanelPadding), "must be in [0, 0.5)")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// LayoutNames parses the requested layouts.
func (o *Options) LayoutNames() ([]layout.Name, error) {
	return layout.ParseNames(o.Layouts)
}

// BuildOptions returns the network build settings.
func (o *Options) BuildOptions() network.BuildOptions {
	return network.BuildOptions{Partition: o.Modules, StrictModules: o.StrictModules}
}

// FrameOptions converts the animation settings to [frames.Options].
func (o *Options) FrameOptions() (frames.Options, error) {
	easing, err := frames.ParseEasing(o.Easing)
	if err != nil {
		return frames.Options{}, err
	}
	var order []layout.Name
	if len(o.Order) > 0 {
		if order, err = layout.ParseNames(o.Order); err != nil {
			return frames.Options{}, err
		}
	}
	fo := frames.Options{
		Order:      order,
		Hold:       durationOr(o.Hold, frames.DefaultHold),
		Transition: durationOr(o.Transition, frames.DefaultTransition),
		FPS:        o.FPS,
		Wrap:       !o.NoWrap,
		Easing:     easing,
	}
	fo.SetDefaults()
	return fo, fo.Validate()
}

// WantsFormat reports whether format was requested.
func (o *Options) WantsFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}

// LayoutKeyOpts returns cache key options for one layout table.
func (o *Options) LayoutKeyOpts(name layout.Name) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Layout: string(name), Seed: o.Seed}
}

// ArtifactKeyOpts returns cache key options for one artifact.
func (o *Options) ArtifactKeyOpts(artifact string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: artifact}
	switch artifact {
	case FormatGIF:
		k.Order = o.Order
		k.Width = float64(o.Width)
		k.Height = float64(o.Height)
		k.FPS = o.FPS
		k.Hold = durationOr(o.Hold, frames.DefaultHold).String()
		k.Transition = durationOr(o.Transition, frames.DefaultTransition).String()
		k.Wrap = !o.NoWrap
		k.Easing = o.Easing
	case FormatSVG, FormatPNG, FormatPDF, FormatHTML:
		k.PanelSize = o.PanelSize
		k.Columns = o.Columns
		k.NodeRadius = o.NodeRadius
		k.Padding = o.PanelPadding
		k.Labels = o.Labels
		k.Title = o.Title
	}
	return k
}
