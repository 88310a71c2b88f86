package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the blockctl command tree
func NewRootCmd(app *App) *cobra.Command {
	var (
		cfgFile string
		plain   bool
	)
	v := viper.New()

	root := &cobra.Command{
		Use:   "blockctl",
		Short: "Block-based writing tools: allocate budgets, build prompts, compose drafts",
		Long: `blockctl runs the block writing pipeline from the terminal.

Documents are YAML files with a title, a target character count, a writing
mode and an ordered list of blocks. Pass "-" to read a document from stdin.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := LoadSettings(v, cfgFile)
			if err != nil {
				return err
			}
			app.settings = settings
			if plain {
				app.Styled = false
			}
			if settings.Verbose {
				app.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.blockctl.yaml)")
	flags.BoolVar(&plain, "plain", false, "disable styled output")
	flags.String("model", "", "Gemini model to try first")
	flags.String("api-key", "", "Gemini API key")
	flags.String("base-url", "", "Gemini API base URL")
	flags.BoolP("verbose", "v", false, "log requests to stderr")
	_ = v.BindPFlag("gemini.model", flags.Lookup("model"))
	_ = v.BindPFlag("gemini.api_key", flags.Lookup("api-key"))
	_ = v.BindPFlag("gemini.base_url", flags.Lookup("base-url"))
	_ = v.BindPFlag("verbose", flags.Lookup("verbose"))

	root.AddCommand(
		newAllocateCmd(app),
		newClampCmd(app),
		newPromptCmd(app),
		newComposeCmd(app),
		newHintsCmd(app),
		newModelsCmd(app),
		newTemplatesCmd(app),
	)

	return root
}

func (a *App) out(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), styled: a.Styled}
}
