package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/search"
	"github.com/matzehuels/collage/pkg/session"
)

// Lines above and below the canvas.
const (
	browseHeaderLines = 2
	browseFooterLines = 3
)

// browseCommand creates the interactive terminal browser.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		flags searchFlags
		query string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse a collage in the terminal",
		Long: `Browse shows a collage in the terminal. Tiles are drawn as boxes labeled
with their photographer.

Press a tile's key or click it to pivot the collage around that photo.
Press / to type a new query; it is submitted after a short pause.`,
		Example: `  collage browse
  collage browse --query "kyoto temple"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			svc, closeFn, err := c.newSearchService(ctx, cfg, flags)
			if err != nil {
				return err
			}
			defer closeFn()

			if query == "" {
				query = cfg.Session.InitialQuery
			}
			m := newBrowseModel(ctx, svc, browseOptions{
				Layout:       cfg.CollageConfig(),
				Session:      cfg.ControllerConfig(),
				InitialQuery: query,
				Debounce:     cfg.Session.Debounce.Duration,
				ExitDelay:    cfg.Session.ExitDelay.Duration,
			})

			// The TUI owns the terminal; keep log lines out of it.
			c.Logger.SetOutput(io.Discard)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&query, "query", "q", "", "initial query (default from session.initial_query)")

	return cmd
}

// =============================================================================
// browseModel - Interactive collage
// =============================================================================

type browseOptions struct {
	Layout       collage.Config
	Session      session.Config
	InitialQuery string
	Debounce     time.Duration
	ExitDelay    time.Duration
	Layouter     *collage.Layouter // overrides Layout when set
}

// eventMsg carries a controller event into the update loop.
type eventMsg struct{ ev session.Event }

// debounceMsg fires after the query input has been idle for the debounce
// interval. Only the message matching the latest edit is applied.
type debounceMsg struct {
	seq   int
	query string
}

// exitMsg reports the end of the exit animation.
type exitMsg struct{}

// termViewport is the drawable area, updated on every window resize.
type termViewport struct {
	size geom.Size
}

func (v *termViewport) Size() (geom.Size, bool) {
	return v.size, v.size.Width > 0 && v.size.Height > 0
}

// browseModel is the bubbletea model for the terminal collage. Controller
// effects become commands that report back as eventMsg.
type browseModel struct {
	ctx      context.Context
	searcher search.Searcher
	ctrl     *session.Controller
	viewport *termViewport
	opts     browseOptions

	width, height int
	selected      int // tile index, or -1
	typing        bool
	input         string
	inputSeq      int
}

func newBrowseModel(ctx context.Context, s search.Searcher, opts browseOptions) browseModel {
	vp := &termViewport{}
	l := opts.Layouter
	if l == nil {
		l = collage.NewLayouter(nil, opts.Layout)
	}
	ctrl := session.NewController(l, vp, opts.Session)
	ctrl.Logger = loggerFromContext(ctx)
	return browseModel{
		ctx:      ctx,
		searcher: s,
		ctrl:     ctrl,
		viewport: vp,
		opts:     opts,
		selected: -1,
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.dispatch(session.QuerySubmitted{Query: m.opts.InitialQuery})
}

// dispatch applies ev and turns the resulting fetches into commands.
func (m browseModel) dispatch(ev session.Event) tea.Cmd {
	fetches := m.ctrl.Handle(ev)
	if len(fetches) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(fetches))
	for _, f := range fetches {
		cmds = append(cmds, m.perform(f))
	}
	return tea.Batch(cmds...)
}

func (m browseModel) perform(f session.Fetch) tea.Cmd {
	ctx, s := m.ctx, m.searcher
	return func() tea.Msg {
		return eventMsg{ev: session.Perform(ctx, s, f)}
	}
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.size = cellViewport(m.canvasSize())
		return m, m.dispatch(session.ViewportChanged{})

	case eventMsg:
		cmd := m.dispatch(msg.ev)
		m.selected = -1
		return m, cmd

	case debounceMsg:
		if msg.seq != m.inputSeq {
			return m, nil
		}
		return m, m.dispatch(session.QuerySubmitted{Query: msg.query})

	case exitMsg:
		return m, m.dispatch(session.ExitCompleted{})

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		return m.click(m.draw().tileAt(msg.X, msg.Y-browseHeaderLines))

	case tea.KeyMsg:
		if m.typing {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m browseModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tiles := m.ctrl.State().Arrangement.Tiles
	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "/":
		m.typing = true
		m.input = ""
	case "r":
		if q := m.ctrl.State().Query; q != "" {
			return m, m.dispatch(session.QuerySubmitted{Query: q})
		}
	case "tab", "right", "l":
		if len(tiles) > 1 {
			if m.selected < 1 {
				m.selected = 1
			} else {
				m.selected = m.selected%(len(tiles)-1) + 1
			}
		}
	case "shift+tab", "left", "h":
		if len(tiles) > 1 {
			if m.selected <= 1 {
				m.selected = len(tiles) - 1
			} else {
				m.selected--
			}
		}
	case "enter", " ":
		return m.click(m.selected)
	default:
		if idx := tileForKey(key); idx >= 0 {
			return m.click(idx)
		}
	}
	return m, nil
}

func (m browseModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.typing = false
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		m.typing = false
		m.inputSeq++
		return m, m.dispatch(session.QuerySubmitted{Query: m.input})
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
	default:
		return m, nil
	}

	m.inputSeq++
	seq, q := m.inputSeq, m.input
	return m, tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq, query: q}
	})
}

// click reports a click on the tile at idx. When the click starts a
// transition, the exit animation is simulated with a timer.
func (m browseModel) click(idx int) (tea.Model, tea.Cmd) {
	tiles := m.ctrl.State().Arrangement.Tiles
	if idx < 0 || idx >= len(tiles) {
		return m, nil
	}
	before := m.ctrl.State().Transitioning
	cmd := m.dispatch(session.TileClicked{Photo: tiles[idx].Photo})
	m.selected = -1
	if !before && m.ctrl.State().Transitioning {
		cmd = tea.Batch(cmd, tea.Tick(m.opts.ExitDelay, func(time.Time) tea.Msg { return exitMsg{} }))
	}
	return m, cmd
}

// canvasSize returns the grid available for tiles.
func (m browseModel) canvasSize() (cols, rows int) {
	return max(m.width, 0), max(m.height-browseHeaderLines-browseFooterLines, 0)
}

// draw lays the current arrangement onto the terminal grid.
func (m browseModel) draw() *canvas {
	cols, rows := m.canvasSize()
	return newCanvas(m.ctrl.State().Arrangement, m.viewport.size, cols, rows)
}

func (m browseModel) View() string {
	st := m.ctrl.State()
	var b strings.Builder

	b.WriteString(StyleTitle.Render(appName))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(statusLine(st)))
	b.WriteString("\n\n")

	b.WriteString(m.draw().render(st.Arrangement, m.selected))
	b.WriteString("\n\n")

	if m.typing {
		b.WriteString(StyleHighlight.Render("query: ") + StyleValue.Render(m.input) + StyleDim.Render("▏"))
	} else {
		b.WriteString(listDimStyle.Render("1-9/a-z or click pivot  ⇥ cycle  ⏎ select  / query  r reload  q quit"))
	}
	b.WriteString("\n")
	if t, ok := st.Arrangement.Center(); ok && t.Photo.Links.HTML != "" {
		b.WriteString(StyleDim.Render("Photo by @"+t.Photo.User.Username+" on Unsplash  ") + StyleLink.Render(t.Photo.Links.HTML))
	}
	return b.String()
}

// statusLine summarizes the session state for the header.
func statusLine(st session.State) string {
	q := fmt.Sprintf("%q", st.Query)
	switch {
	case st.Transitioning:
		return fmt.Sprintf("%s · pivoting to %q…", q, st.PendingQuery)
	case st.Loading:
		return q + " · loading…"
	}
	switch st.Status {
	case session.StatusEmpty:
		return q + " · no photos found"
	case session.StatusFailed:
		return q + " · " + st.Error()
	case session.StatusOK:
		return fmt.Sprintf("%s · %d tiles", q, st.Arrangement.Len())
	}
	return "starting…"
}

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
