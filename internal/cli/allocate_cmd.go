package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"blockwriter/internal/blocks"
	"blockwriter/internal/domain/models"
)

func newAllocateCmd(app *App) *cobra.Command {
	var (
		target int
		file   string
		preset string
		policy string
	)

	cmd := &cobra.Command{
		Use:   "allocate [block-type...]",
		Short: "Split a character budget across blocks",
		Example: `  blockctl allocate point reason example point --target 400
  blockctl allocate --preset preset-prep --target 800
  blockctl allocate -f essay.yaml --policy as-observed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePolicy(policy)
			if err != nil {
				return err
			}

			var (
				types  []models.BlockType
				labels []string
				total  = target
			)
			switch {
			case file != "":
				doc, err := ReadDocument(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				types = doc.BlockTypes()
				for _, b := range doc.Blocks {
					labels = append(labels, b.Label)
				}
				if !cmd.Flags().Changed("target") {
					total = doc.Target()
				}
			case preset != "":
				tmpl, ok := app.Catalog.Preset(preset)
				if !ok {
					return fmt.Errorf("unknown preset %q", preset)
				}
				for _, b := range tmpl.Blocks {
					types = append(types, b.Type)
					labels = append(labels, b.Label)
				}
			default:
				for _, a := range args {
					types = append(types, models.BlockType(a))
				}
			}
			if len(types) == 0 {
				return fmt.Errorf("no blocks: pass block types, --preset or -f")
			}
			if total <= 0 {
				return fmt.Errorf("--target must be positive")
			}

			targets := blocks.NewAllocator(app.Catalog.Ratios(), p).Allocate(types, total)

			rows := make([][]string, len(types))
			for i, t := range types {
				label := app.Catalog.Label(t)
				if i < len(labels) && labels[i] != "" {
					label = labels[i]
				}
				rows[i] = []string{strconv.Itoa(i), string(t), label, strconv.Itoa(targets[i])}
			}

			out := app.out(cmd)
			out.header(fmt.Sprintf("%d 字 / %d blocks (%s)", total, len(types), p))
			out.table([]string{"#", "TYPE", "LABEL", "TARGET"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&target, "target", "t", models.DefaultTargetCharCount, "document character budget")
	cmd.Flags().StringVarP(&file, "file", "f", "", "document YAML file, - for stdin")
	cmd.Flags().StringVar(&preset, "preset", "", "allocate for a preset template")
	cmd.Flags().StringVar(&policy, "policy", "clamped", "negative-residual policy: clamped or as-observed")
	return cmd
}

func parsePolicy(s string) (blocks.Policy, error) {
	switch s {
	case "", "clamped":
		return blocks.PolicyClamped, nil
	case "as-observed":
		return blocks.PolicyAsObserved, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (want clamped or as-observed)", s)
	}
}
