package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"blockwriter/internal/service/llm/prompts"
)

func newPromptCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt that would be sent to the model",
	}
	cmd.AddCommand(newPromptComposeCmd(app), newPromptHintsCmd(app))
	return cmd
}

func newPromptComposeCmd(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Render the composition prompt for a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ReadDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			in := prompts.ComposeInput{
				Blocks:          make([]prompts.ComposeBlock, len(doc.Blocks)),
				Mode:            doc.Mode.Normalize(),
				TargetCharCount: doc.Target(),
				DocumentType:    doc.DocumentType,
			}
			for i, b := range doc.Blocks {
				in.Blocks[i] = prompts.ComposeBlock{Type: b.Type, Label: b.Label, Content: b.Content, Order: i}
			}

			low, high := prompts.ComposeWindow(doc.Target())
			out := app.out(cmd)
			out.dim(fmt.Sprintf("# compose %s, %d〜%d 字", in.Mode, low, high))
			out.line("%s", prompts.NewBuilder(app.Catalog).BuildComposePrompt(in))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "document YAML file, - for stdin")
	return cmd
}

func newPromptHintsCmd(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "hints",
		Short: "Render the hints prompt for a document and its experiences",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ReadDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			in := prompts.HintsInput{
				Theme:           doc.Theme,
				Blocks:          make([]prompts.HintBlock, len(doc.Blocks)),
				WritingMode:     doc.Mode.Normalize(),
				TargetCharCount: doc.Target(),
				DocumentType:    doc.DocumentType,
			}
			for i, b := range doc.Blocks {
				in.Blocks[i] = prompts.HintBlock{Type: b.Type, Label: b.Label, Order: i}
			}
			for _, e := range newFileExperiences(doc).items {
				in.Experiences = append(in.Experiences, prompts.Experience{
					ID: e.ID, Title: e.Title, Content: e.Content, Category: e.Category,
				})
			}

			out := app.out(cmd)
			out.dim(fmt.Sprintf("# hints %s, tier %s", in.WritingMode, prompts.TierFor(in.TargetCharCount)))
			out.line("%s", prompts.NewBuilder(app.Catalog).BuildHintsPrompt(in))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "document YAML file, - for stdin")
	return cmd
}
