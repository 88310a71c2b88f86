package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"blockwriter/internal/service/llm/postprocess"
)

func newClampCmd(app *App) *cobra.Command {
	var (
		target int
		file   string
	)

	cmd := &cobra.Command{
		Use:   "clamp [text]",
		Short: "Trim text to a target length at a sentence boundary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target <= 0 {
				return fmt.Errorf("--target must be positive")
			}

			var text string
			switch {
			case len(args) == 1:
				text = args[0]
			case file != "":
				data, err := readInput(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(data)
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			text = strings.TrimSpace(text)

			clamped := postprocess.ClampToTarget(text, target)
			before, after := utf8.RuneCountInString(text), utf8.RuneCountInString(clamped)

			out := app.out(cmd)
			out.line("%s", clamped)
			out.status(after <= postprocess.Limit(target),
				fmt.Sprintf("%d → %d 字 (limit %d)", before, after, postprocess.Limit(target)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&target, "target", "t", 0, "target character count")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from a file, - for stdin")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
