package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmorph/pkg/config"
	graphio "github.com/matzehuels/graphmorph/pkg/io"
	"github.com/matzehuels/graphmorph/pkg/network"
	"github.com/matzehuels/graphmorph/pkg/pipeline"
	"github.com/matzehuels/graphmorph/pkg/render"
)

// runFlags holds the flags of the run command. Flags the user sets win over
// values from --config.
type runFlags struct {
	nodes      string
	output     string
	configPath string
	watch      bool
	tui        bool
	cache      cacheFlags

	layouts    string
	order      string
	formats    string
	modules    []string
	strict     bool
	seed       uint64
	parallel   bool
	hold       time.Duration
	transition time.Duration
	fps        int
	noWrap     bool
	easing     string
	width      int
	height     int
	panelSize  float64
	columns    int
	nodeRadius float64
	padding    float64
	labels     bool
	title      string
	refresh    bool
}

// runSpec is a fully resolved run: input files, output base and options.
type runSpec struct {
	edges  string
	nodes  string
	output string
	opts   pipeline.Options
	files  []string // files to watch
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [edges-file]",
		Short: "Lay out a network, then animate and compare the layouts",
		Long: `Run builds a network from an edge list (CSV, XLSX or JSON), computes the
requested layouts, joins them into node and edge tables and renders the
requested formats.

Artifacts are written next to the output base: --output out gives out.gif,
out.svg, out.nodes.csv and so on. Without --output the base is the edge file
name without its extension.`,
		Example: `  graphmorph run edges.csv --layouts circle,kk,tree --format gif,svg
  graphmorph run edges.csv --module core=1-10 --module edge=11-20 --tui
  graphmorph run --config graphmorph.toml --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := resolveRun(cmd, args, &f)
			if err != nil {
				return err
			}

			ctx := withLogger(cmd.Context(), c.Logger)
			runner, err := c.newRunner(ctx, f.cache)
			if err != nil {
				return err
			}
			defer runner.Close()
			if c.Logger.GetLevel() > log.DebugLevel {
				runner.Logger = quiet(c.Logger)
			}

			if !f.watch {
				return c.runOnce(ctx, runner, spec, f.tui)
			}
			return c.watchRun(ctx, runner, cmd, args, &f, spec)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.nodes, "nodes", "", "optional node table (CSV, XLSX or JSON)")
	fl.StringVarP(&f.output, "output", "o", "", "output base path")
	fl.StringVarP(&f.configPath, "config", "c", "", "TOML or YAML run configuration")
	fl.BoolVarP(&f.watch, "watch", "w", false, "re-run when the inputs or configuration change")
	fl.BoolVar(&f.tui, "tui", false, "show an interactive layout progress view")
	f.cache.register(cmd)

	fl.StringVarP(&f.layouts, "layouts", "l", "", "comma-separated layouts (default all)")
	fl.StringVar(&f.order, "order", "", "comma-separated animation order (default curated order)")
	fl.StringVarP(&f.formats, "format", "f", "", "comma-separated output formats (gif,svg,png,pdf,html,json,csv)")
	fl.StringArrayVarP(&f.modules, "module", "m", nil, "module range `name=from-to` (repeatable)")
	fl.BoolVar(&f.strict, "strict-modules", false, "fail when a node matches no module range")
	fl.Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "seed for the stochastic layouts")
	fl.BoolVarP(&f.parallel, "parallel", "p", false, "compute layouts concurrently")
	fl.DurationVar(&f.hold, "hold", 0, "time each layout is held (default 1s)")
	fl.DurationVar(&f.transition, "transition", 0, "time between layouts, 0 for a hard cut (default 2s)")
	fl.IntVar(&f.fps, "fps", 0, "animation frame rate (default 10)")
	fl.BoolVar(&f.noWrap, "no-wrap", false, "do not morph from the last layout back to the first")
	fl.StringVar(&f.easing, "easing", "", "transition easing: cubic-in-out or linear")
	fl.IntVar(&f.width, "width", 0, "animation width in pixels (default 800)")
	fl.IntVar(&f.height, "height", 0, "animation height in pixels (default 600)")
	fl.Float64Var(&f.panelSize, "panel-size", 0, "comparison panel size in pixels")
	fl.IntVar(&f.columns, "columns", 0, "comparison panels per row")
	fl.Float64Var(&f.nodeRadius, "node-radius", 0, "comparison node radius in pixels (default 4)")
	fl.Float64Var(&f.padding, "panel-padding", 0, "comparison panel padding as a fraction of the panel (default 0.05)")
	fl.BoolVar(&f.labels, "labels", false, "label nodes in the comparison")
	fl.StringVar(&f.title, "title", "", "title of the HTML comparison")
	fl.BoolVar(&f.refresh, "refresh", false, "recompute layouts even when cached")

	return cmd
}

// resolveRun merges the configuration file, positional arguments and flags.
func resolveRun(cmd *cobra.Command, args []string, f *runFlags) (runSpec, error) {
	var spec runSpec
	if f.configPath != "" {
		file, err := config.Load(f.configPath)
		if err != nil {
			return spec, err
		}
		spec.edges, spec.nodes, spec.output = file.Edges, file.Nodes, file.Output
		spec.opts = file.Options
		spec.files = append(spec.files, file.Path)
	}

	if len(args) == 1 {
		spec.edges = args[0]
	}
	if f.nodes != "" {
		spec.nodes = f.nodes
	}
	if f.output != "" {
		spec.output = f.output
	}
	if spec.edges == "" {
		return spec, fmt.Errorf("no edge file: pass one as an argument or set edges in --config")
	}
	if spec.output == "" {
		spec.output = strings.TrimSuffix(spec.edges, filepath.Ext(spec.edges))
	}
	spec.files = append(spec.files, spec.edges)
	if spec.nodes != "" {
		spec.files = append(spec.files, spec.nodes)
	}

	if err := applyFlags(cmd, f, &spec.opts); err != nil {
		return spec, err
	}
	return spec, nil
}

// applyFlags copies every flag the user set onto opts.
func applyFlags(cmd *cobra.Command, f *runFlags, opts *pipeline.Options) error {
	changed := cmd.Flags().Changed

	if changed("layouts") {
		opts.Layouts = splitList(f.layouts)
	}
	if changed("order") {
		opts.Order = splitList(f.order)
	}
	if changed("format") {
		opts.Formats = splitList(f.formats)
	}
	if changed("module") {
		opts.Modules = opts.Modules[:0:0]
		for _, m := range f.modules {
			r, err := network.ParseModuleRange(m)
			if err != nil {
				return err
			}
			opts.Modules = append(opts.Modules, r)
		}
	}
	if changed("strict-modules") {
		opts.StrictModules = f.strict
	}
	if changed("seed") || opts.Seed == 0 {
		opts.Seed = f.seed
	}
	if changed("parallel") {
		opts.Parallel = f.parallel
	}
	if changed("hold") {
		opts.Hold = pipeline.NewDuration(f.hold)
	}
	if changed("transition") {
		opts.Transition = pipeline.NewDuration(f.transition)
	}
	if changed("fps") {
		opts.FPS = f.fps
	}
	if changed("no-wrap") {
		opts.NoWrap = f.noWrap
	}
	if changed("easing") {
		opts.Easing = f.easing
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("panel-size") {
		opts.PanelSize = f.panelSize
	}
	if changed("columns") {
		opts.Columns = f.columns
	}
	if changed("node-radius") {
		opts.NodeRadius = f.nodeRadius
	}
	if changed("panel-padding") {
		opts.PanelPadding = f.padding
	}
	if changed("labels") {
		opts.Labels = f.labels
	}
	if changed("title") {
		opts.Title = f.title
	}
	if changed("refresh") {
		opts.Refresh = f.refresh
	}
	return nil
}

// runOnce imports the inputs, executes the pipeline and writes artifacts.
func (c *CLI) runOnce(ctx context.Context, runner *pipeline.Runner, spec runSpec, tui bool) error {
	prog := newProgress(c.Logger)

	in, err := graphio.ImportInput(spec.edges, spec.nodes)
	if err != nil {
		return err
	}

	opts := spec.opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if needsConverter(opts.Formats) && !render.ConverterAvailable() {
		printWarning("rsvg-convert not found; png and pdf output will fail")
	}

	verbose := c.Logger.GetLevel() <= log.DebugLevel

	exec := func(ctx context.Context) (*pipeline.Result, error) {
		return runner.Execute(ctx, in, opts)
	}

	var res *pipeline.Result
	switch {
	case tui:
		names, _ := opts.LayoutNames()
		res, err = executeWithTUI(ctx, runner, names, exec)
	case verbose:
		res, err = exec(ctx)
	default:
		sp := newSpinner(ctx, fmt.Sprintf("Running %d layouts", len(opts.Layouts)))
		sp.Start()
		res, err = exec(ctx)
		sp.Stop()
	}
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(spec.output, res.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Morphed %s", StyleValue.Render(filepath.Base(spec.edges)))
	printRunStats(res)
	counts := make(map[string]int)
	for _, n := range res.Network.Nodes() {
		counts[n.Module]++
	}
	printDetail("modules: %s", moduleCounts(counts))
	for _, p := range paths {
		printFile(p)
	}
	prog.done(fmt.Sprintf("Wrote %d artifacts", len(paths)))
	return nil
}

// watchRun runs once, then again whenever a watched file changes. Failed
// runs are reported and watching continues.
func (c *CLI) watchRun(ctx context.Context, runner *pipeline.Runner, cmd *cobra.Command, args []string, f *runFlags, spec runSpec) error {
	if err := c.runOnce(ctx, runner, spec, false); err != nil {
		printError("%v", err)
	}

	w, err := config.NewWatcher(spec.files...)
	if err != nil {
		return err
	}
	logger := loggerFromContext(ctx)
	w.Logger = logger
	printInfo("Watching %d files, Ctrl+C to stop", len(spec.files))

	return w.Watch(ctx, func(path string) {
		logger.Debug("input changed", "path", path)
		next, err := resolveRun(cmd, args, f)
		if err != nil {
			printError("%v", err)
			return
		}
		if !slices.Equal(next.files, spec.files) {
			printWarning("input files changed; restart to watch the new set")
		}
		if err := c.runOnce(ctx, runner, next, false); err != nil {
			printError("%v", err)
		}
	})
}

// writeArtifacts writes each artifact to base.<name> and returns the paths
// in name order.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	slices.Sort(names)

	paths := make([]string, len(names))
	for i, name := range names {
		p := base + "." + name
		if err := os.WriteFile(p, artifacts[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths[i] = p
	}
	return paths, nil
}

// quiet returns a copy of l that only reports warnings and errors. The run
// command uses it so stage logs do not fight with the spinner.
func quiet(l *log.Logger) *log.Logger {
	q := l.With()
	q.SetLevel(log.WarnLevel)
	return q
}

func needsConverter(formats []string) bool {
	return slices.Contains(formats, pipeline.FormatPNG) || slices.Contains(formats, pipeline.FormatPDF)
}
