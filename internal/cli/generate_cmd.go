package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
	"blockwriter/internal/domain/services"
	serviceLLM "blockwriter/internal/service/llm"
	"blockwriter/internal/service/llm/postprocess"
	"blockwriter/internal/service/llm/prompts"
)

func (a *App) writingService(experiences repositories.ExperienceRepository) services.WritingService {
	return serviceLLM.NewWritingService(
		a.NewGenerator(a.settings, a.Logger),
		experiences,
		prompts.NewBuilder(a.Catalog),
		a.Logger,
	)
}

func newComposeCmd(app *App) *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Merge a document's blocks into one draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ReadDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			result, err := app.writingService(newFileExperiences(doc)).Compose(cmd.Context(), doc.ComposeRequest())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, result)
			}

			target := doc.Target()
			out := app.out(cmd)
			out.line("%s", result.ComposedText)
			out.status(result.CharCount <= postprocess.Limit(target),
				fmt.Sprintf("%d / %d 字 (%s)", result.CharCount, target, result.Mode))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "document YAML file, - for stdin")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the API response shape")
	return cmd
}

func newHintsCmd(app *App) *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "hints",
		Short: "Generate writing hints for a document using its experiences",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ReadDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			data, err := app.writingService(newFileExperiences(doc)).Hints(cmd.Context(), doc.HintsRequest())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, data)
			}
			printHints(app.out(cmd), doc, data)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "document YAML file, - for stdin")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the API response shape")
	return cmd
}

func printHints(out printer, doc *DocumentFile, data *models.HintsData) {
	out.header(data.Theme)
	out.line("%s", data.Overview)
	if data.StructureHint != "" {
		out.dim(data.StructureHint)
	}

	if data.NoExperiences {
		out.dim("経験データがありません")
	} else if len(data.SuggestedExperiences) > 0 {
		out.line("")
		rows := make([][]string, len(data.SuggestedExperiences))
		for i, e := range data.SuggestedExperiences {
			rows[i] = []string{e.ID, e.Title, e.Relevance}
		}
		out.table([]string{"ID", "EXPERIENCE", "RELEVANCE"}, rows)
	}

	if len(data.BlockHints) > 0 {
		out.line("")
		rows := make([][]string, len(data.BlockHints))
		for i, h := range data.BlockHints {
			label := ""
			if h.Order >= 0 && h.Order < len(doc.Blocks) {
				label = doc.Blocks[h.Order].Label
			}
			rows[i] = []string{strconv.Itoa(h.Order), label, h.Hint}
		}
		out.table([]string{"#", "BLOCK", "HINT"}, rows)
	}
}

func newModelsCmd(app *App) *cobra.Command {
	var generateOnly bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models available to the configured API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.writingService(newFileExperiences(&DocumentFile{})).ListModels(cmd.Context())
			if err != nil {
				return err
			}

			var rows [][]string
			for _, m := range list {
				methods := strings.Join(m.SupportedGenerationMethods, ",")
				if generateOnly && !strings.Contains(methods, "generateContent") {
					continue
				}
				rows = append(rows, []string{m.Name, m.DisplayName, methods})
			}
			app.out(cmd).table([]string{"NAME", "DISPLAY NAME", "METHODS"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&generateOnly, "generate", false, "only models that support generateContent")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
