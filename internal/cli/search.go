package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collage/pkg/photo"
)

// maxDescriptionWidth truncates descriptions in the result table.
const maxDescriptionWidth = 48

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		flags  searchFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Print the photos matching a query",
		Long: `Search runs one photo search and prints the results as a table.

The query is validated the same way the server validates it. Results are
cached according to the [cache] section of the config file.`,
		Example: `  collage search "japanese landscape"
  collage search kyoto --json
  collage search tokyo --remote http://localhost:8080`,
		Args: cobra.MinimumNArgs(1),
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

			query := strings.Join(args, " ")
			start := time.Now()
			sp := newSpinner(ctx, cmd.ErrOrStderr(), "Searching "+query+"...")
			sp.Start()
			photos, err := svc.Search(ctx, query)
			sp.Stop()
			if err != nil {
				return err
			}
			newProgress(loggerFromContext(ctx)).done(fmt.Sprintf("Found %d photos for %q", len(photos), query))

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), photos)
			}
			if len(photos) == 0 {
				printWarning("No photos found for %q", query)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPhotoTable(photos))
			printStats(len(photos), "photos", time.Since(start))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw photo records as JSON")

	return cmd
}

// renderPhotoTable formats photos as a bordered table.
func renderPhotoTable(photos []photo.Photo) string {
	rows := make([][]string, 0, len(photos))
	for i, p := range photos {
		desc := p.Description()
		if desc == "" {
			desc = "—"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.ID,
			"@" + p.User.Username,
			strconv.Itoa(p.Likes),
			truncate(desc, maxDescriptionWidth),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "ID", "Photographer", "Likes", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0 || col == 3:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
