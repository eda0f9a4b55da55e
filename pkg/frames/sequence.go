package frames

import (
	"math"
	"slices"
	"time"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/table"
)

// DefaultOrder is the curated animation timeline. It alternates between
// compact and spread-out layouts rather than following display order.
var DefaultOrder = []layout.Name{
	layout.Circle, layout.KK, layout.Tree, layout.FR, layout.Star,
	layout.Stress, layout.Sugiyama, layout.MDS, layout.GEM,
}

// Default animation settings.
const (
	DefaultHold       = time.Second
	DefaultTransition = 2 * time.Second
	DefaultFPS        = 10
	DefaultPadding    = 0.05
)

// Options controls [Sequence].
type Options struct {
	// Order is the timeline. Empty means DefaultOrder restricted to the
	// layouts present in the table.
	Order []layout.Name

	// Hold and Transition are used as given. A zero Transition cuts from
	// one layout to the next; a hold always lasts at least one frame.
	Hold       time.Duration
	Transition time.Duration
	FPS        int

	// Wrap appends a transition from the last layout back to the first.
	Wrap bool

	Easing Easing

	// Padding grows every viewport by this fraction of its larger side.
	Padding float64
}

// DefaultOptions returns the settings used by the CLI.
func DefaultOptions() Options {
	return Options{
		Hold:       DefaultHold,
		Transition: DefaultTransition,
		FPS:        DefaultFPS,
		Wrap:       true,
		Easing:     EaseCubicInOut,
		Padding:    DefaultPadding,
	}
}

// SetDefaults fills a zero FPS, Easing and Padding. Hold, Transition and
// Wrap are left as is; start from [DefaultOptions] for the default pacing.
func (o *Options) SetDefaults() {
	if o.FPS == 0 {
		o.FPS = DefaultFPS
	}
	if o.Easing == "" {
		o.Easing = EaseCubicInOut
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Hold < 0 {
		return gmerrors.Invalid("hold", o.Hold.String(), "must not be negative")
	}
	if o.Transition < 0 {
		return gmerrors.Invalid("transition", o.Transition.String(), "must not be negative")
	}
	if o.FPS <= 0 || o.FPS > 60 {
		return gmerrors.Invalid("fps", "", "must be between 1 and 60, got %d", o.FPS)
	}
	if o.Padding < 0 {
		return gmerrors.Invalid("padding", "", "must not be negative")
	}
	if _, err := ParseEasing(string(o.Easing)); err != nil {
		return err
	}
	return nil
}

// NodePos is a node position within one frame.
type NodePos struct {
	ID     string
	Module string
	X, Y   float64
}

// Segment is an edge within one frame.
type Segment struct {
	EdgeID     string
	X, Y       float64
	XEnd, YEnd float64
}

// Frame is one picture of the animation.
type Frame struct {
	Index int

	// Title is the layout closest to this frame on the timeline.
	Title layout.Name

	// From and To are the layouts being interpolated. They are equal on
	// hold frames.
	From, To layout.Name

	// Progress is the eased fraction of the way from From to To.
	Progress float64

	Nodes    []NodePos
	Edges    []Segment
	Viewport table.Extent
}

// Hold reports whether the frame shows a layout at rest.
func (f Frame) Hold() bool { return f.From == f.To }

// Animation is an ordered frame sequence.
type Animation struct {
	Frames  []Frame
	Order   []layout.Name
	FPS     int
	Modules []string
}

// FrameDelay returns the display time of a single frame.
func (a *Animation) FrameDelay() time.Duration {
	return time.Second / time.Duration(a.FPS)
}

// Duration returns the total playing time.
func (a *Animation) Duration() time.Duration {
	return time.Duration(len(a.Frames)) * a.FrameDelay()
}

// FrameCount returns the number of frames [Sequence] produces for n layouts.
func (o Options) FrameCount(n int) int {
	if n == 0 {
		return 0
	}
	hold, trans := o.frameBudget()
	transitions := n - 1
	if o.Wrap && n > 1 {
		transitions = n
	}
	return n*hold + transitions*trans
}

func (o Options) frameBudget() (hold, trans int) {
	fps := float64(o.FPS)
	hold = max(1, int(math.Round(o.Hold.Seconds()*fps)))
	trans = int(math.Round(o.Transition.Seconds() * fps))
	return hold, trans
}

// snapshot is one layout's positions, indexed for interpolation.
type snapshot struct {
	nodes map[string]layout.Point
	edges map[string]table.EdgeRow
}

// Sequence builds the animation for u. See [Options.SetDefaults] for the
// fields that are defaulted.
func Sequence(u *table.Unified, opts Options) (*Animation, error) {
	if u == nil || len(u.Layouts) == 0 {
		return nil, gmerrors.Invalid("table", "", "no layouts to animate")
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	order, err := timeline(u, opts.Order)
	if err != nil {
		return nil, err
	}

	snaps := make(map[layout.Name]snapshot, len(order))
	for _, l := range order {
		s := snapshot{nodes: make(map[string]layout.Point), edges: make(map[string]table.EdgeRow)}
		for _, r := range u.NodesFor(l) {
			s.nodes[r.Name] = layout.Point{X: r.X, Y: r.Y}
		}
		for _, r := range u.EdgesFor(l) {
			s.edges[r.EdgeID] = r
		}
		snaps[l] = s
	}

	first := order[0]
	nodeRows := u.NodesFor(first)
	edgeIDs := make([]string, 0, len(snaps[first].edges))
	for _, r := range u.EdgesFor(first) {
		edgeIDs = append(edgeIDs, r.EdgeID)
	}

	b := &builder{
		nodes:   nodeRows,
		edgeIDs: edgeIDs,
		snaps:   snaps,
		padding: opts.Padding,
		frames:  make([]Frame, 0, opts.FrameCount(len(order))),
	}

	hold, trans := opts.frameBudget()
	for i, l := range order {
		for range hold {
			b.add(l, l, 0)
		}
		last := i == len(order)-1
		if len(order) == 1 || (last && !opts.Wrap) {
			continue
		}
		next := order[(i+1)%len(order)]
		for j := range trans {
			t := float64(j+1) / float64(trans+1)
			b.add(l, next, opts.Easing.Apply(t))
		}
	}

	return &Animation{
		Frames:  b.frames,
		Order:   order,
		FPS:     opts.FPS,
		Modules: u.Modules(),
	}, nil
}

// timeline resolves the requested order against the layouts in u.
func timeline(u *table.Unified, requested []layout.Name) ([]layout.Name, error) {
	if len(requested) == 0 {
		var order []layout.Name
		for _, l := range DefaultOrder {
			if u.Has(l) {
				order = append(order, l)
			}
		}
		for _, l := range u.Layouts {
			if !slices.Contains(order, l) {
				order = append(order, l)
			}
		}
		return order, nil
	}

	seen := make(map[layout.Name]bool, len(requested))
	for _, l := range requested {
		if !u.Has(l) {
			return nil, gmerrors.Invalid("order", string(l), "layout was not computed")
		}
		if seen[l] {
			return nil, gmerrors.Invalid("order", string(l), "listed more than once")
		}
		seen[l] = true
	}
	return slices.Clone(requested), nil
}

type builder struct {
	nodes   []table.NodeRow // node identity and module, in row order
	edgeIDs []string
	snaps   map[layout.Name]snapshot
	padding float64
	frames  []Frame
}

func (b *builder) add(from, to layout.Name, p float64) {
	a, z := b.snaps[from], b.snaps[to]

	f := Frame{
		Index:    len(b.frames),
		Title:    from,
		From:     from,
		To:       to,
		Progress: p,
		Nodes:    make([]NodePos, len(b.nodes)),
		Edges:    make([]Segment, len(b.edgeIDs)),
	}
	if p >= 0.5 {
		f.Title = to
	}

	ext := table.EmptyExtent()
	for i, n := range b.nodes {
		pos := a.nodes[n.Name].Lerp(z.nodes[n.Name], p)
		f.Nodes[i] = NodePos{ID: n.Name, Module: n.Module, X: pos.X, Y: pos.Y}
		ext = ext.Add(pos.X, pos.Y)
	}
	for i, id := range b.edgeIDs {
		ea, ez := a.edges[id], z.edges[id]
		f.Edges[i] = Segment{
			EdgeID: id,
			X:      lerp(ea.X, ez.X, p),
			Y:      lerp(ea.Y, ez.Y, p),
			XEnd:   lerp(ea.XEnd, ez.XEnd, p),
			YEnd:   lerp(ea.YEnd, ez.YEnd, p),
		}
	}
	f.Viewport = ext.Pad(b.padding)
	b.frames = append(b.frames, f)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
