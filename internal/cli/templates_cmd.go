package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"blockwriter/internal/blocks"
)

func newTemplatesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"presets"},
		Short:   "List preset templates and block types",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := app.out(cmd)

			var rows [][]string
			for _, t := range app.Catalog.Presets() {
				types := make([]string, len(t.Blocks))
				for i, b := range t.Blocks {
					types[i] = string(b.Type)
				}
				id := t.ID
				if id == blocks.DefaultPresetID {
					id += " *"
				}
				rows = append(rows, []string{id, t.Name, strings.Join(types, " → ")})
			}
			out.table([]string{"ID", "NAME", "BLOCKS"}, rows)
			out.line("")

			rows = rows[:0]
			for _, bt := range app.Catalog.BlockTypes() {
				ratio := "even"
				if bt.Ratio != nil {
					ratio = strconv.FormatFloat(*bt.Ratio, 'f', -1, 64)
				}
				rows = append(rows, []string{string(bt.Type), bt.Label, ratio, bt.Intent})
			}
			out.table([]string{"TYPE", "LABEL", "RATIO", "INTENT"}, rows)
			out.dim(fmt.Sprintf("* default preset for new documents (%d document types)", len(app.Catalog.DocumentTypes())))
			return nil
		},
	}
	return cmd
}
