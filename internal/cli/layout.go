package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/placement"
	"github.com/matzehuels/collage/pkg/session"
)

// layoutOptions holds the flags of the layout command.
type layoutOptions struct {
	search searchFlags
	width  float64
	height float64
	seed   uint64
	pivots []int
	asJSON bool
	cols   int
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOptions

	cmd := &cobra.Command{
		Use:   "layout [query]",
		Short: "Compute one collage layout and print it",
		Long: `Layout runs a session without a UI: it searches, lays out the result and
optionally pivots on peripheral tiles, then prints the final arrangement.

--pivot N clicks the N-th peripheral (1-based) and may be repeated to follow a
chain of pivots. --seed makes the placement reproducible.`,
		Example: `  collage layout "japanese landscape"
  collage layout kyoto --pivot 3 --json
  collage layout --width 1920 --height 1080 --seed 7`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			svc, closeFn, err := c.newSearchService(ctx, cfg, opts.search)
			if err != nil {
				return err
			}
			defer closeFn()

			query := cfg.Session.InitialQuery
			if len(args) > 0 {
				query = args[0]
			}
			vp := cfg.Viewport()
			if opts.width > 0 {
				vp.Width = opts.width
			}
			if opts.height > 0 {
				vp.Height = opts.height
			}
			if err := errors.ValidateDimension("width", vp.Width); err != nil {
				return err
			}
			if err := errors.ValidateDimension("height", vp.Height); err != nil {
				return err
			}

			engine := placement.NewEngine(nil)
			if opts.seed != 0 {
				engine = placement.NewSeededEngine(opts.seed)
			}
			ctrl := session.NewController(collage.NewLayouter(engine, cfg.CollageConfig()), placement.Fixed(vp), cfg.ControllerConfig())
			ctrl.Logger = loggerFromContext(ctx)
			runner := session.NewRunner(ctrl, svc, nil)

			start := time.Now()
			st := runner.Start(ctx, query)
			for _, n := range opts.pivots {
				peripherals := st.Arrangement.Peripherals()
				if n < 1 || n > len(peripherals) {
					return fmt.Errorf("--pivot %d: arrangement has %d peripherals", n, len(peripherals))
				}
				st = runner.Pivot(ctx, peripherals[n-1].Photo)
			}
			if st.Status == session.StatusFailed {
				return st.Err
			}

			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), layoutResult{State: st, Viewport: vp, Error: st.Error()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLayout(st, vp, opts.cols))
			printStats(st.Arrangement.Len(), "tiles", time.Since(start))
			return nil
		},
	}

	opts.search.register(cmd)
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width in pixels (default server.viewport_width)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height in pixels (default server.viewport_height)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for placement (0 picks one)")
	cmd.Flags().IntSliceVar(&opts.pivots, "pivot", nil, "click the N-th peripheral after the search (repeatable)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the session state as JSON")
	cmd.Flags().IntVar(&opts.cols, "cols", 100, "width of the text rendering in columns")

	return cmd
}

// layoutResult is the JSON output of the layout command.
type layoutResult struct {
	session.State
	Viewport geom.Size `json:"viewport"`
	Error    string    `json:"error,omitempty"`
}

// renderLayout draws the arrangement as text followed by a tile legend.
func renderLayout(st session.State, vp geom.Size, cols int) string {
	if cols <= 0 {
		cols = 100
	}
	rows := max(int(float64(cols)*vp.Height/vp.Width*cellWidth/cellHeight), 1)

	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("%q", st.Query)))
	b.WriteString("\n")
	if st.Arrangement.Len() == 0 {
		b.WriteString(StyleWarning.Render(statusLine(st)))
		return b.String()
	}
	b.WriteString(newCanvas(st.Arrangement, vp, cols, rows).render(st.Arrangement, -1))
	b.WriteString("\n\n")
	for i, t := range st.Arrangement.Tiles {
		key := tileKey(i)
		if t.IsCenter {
			key = "●"
		}
		fmt.Fprintf(&b, "%s %-12s %6.0f,%-6.0f %+5.1f°  %s\n",
			StyleNumber.Render(key),
			t.Photo.ID,
			t.Rect.X, t.Rect.Y,
			t.Tilt,
			StyleDim.Render(t.Photo.AltText(t.IsCenter)))
	}
	return strings.TrimRight(b.String(), "\n")
}
