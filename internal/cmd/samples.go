package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"classical-quiz/internal/catalog"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the samples in the catalog",
	Long: `List every sample in the configured catalog with its composer, title and
resolved location. Output is rendered as a table on a terminal and as plain
markdown otherwise.`,
	RunE: runSamples,
}

func init() {
	rootCmd.AddCommand(samplesCmd)
}

func runSamples(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(cfg.CatalogPath, cfg.MediaDir)
	if err != nil {
		return err
	}

	doc := samplesMarkdown(cat)
	out := cmd.OutOrStdout()

	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil || width <= 0 {
			width = 100
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			if rendered, err := renderer.Render(doc); err == nil {
				doc = rendered
			}
		}
	}

	fmt.Fprint(out, doc)
	return nil
}

func samplesMarkdown(cat *catalog.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Samples (%d)\n\n", cat.Len())
	b.WriteString("| ID | Composer | Title | Location |\n")
	b.WriteString("|---:|---|---|---|\n")
	for _, id := range cat.AllSampleIDs() {
		s, ok := cat.SampleByID(id)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %d | %s | %s | `%s` |\n", s.ID, escapeCell(s.Composer), escapeCell(s.Title), s.Locator)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
