package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings are the resolved blockctl options
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Verbose bool
}

// LoadSettings reads ~/.blockctl.yaml (or cfgFile), then environment overrides.
// Keys: gemini.api_key, gemini.model, gemini.base_url, gemini.timeout, verbose.
// GEMINI_API_KEY and friends are honored alongside BLOCKCTL_-prefixed variables.
func LoadSettings(v *viper.Viper, cfgFile string) (Settings, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".blockctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("BLOCKCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("gemini.api_key", "BLOCKCTL_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("gemini.model", "BLOCKCTL_GEMINI_MODEL", "GEMINI_MODEL")
	_ = v.BindEnv("gemini.base_url", "BLOCKCTL_GEMINI_BASE_URL", "GEMINI_BASE_URL")

	v.SetDefault("gemini.timeout", "60s")
	v.SetDefault("verbose", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	return Settings{
		APIKey:  v.GetString("gemini.api_key"),
		Model:   v.GetString("gemini.model"),
		BaseURL: v.GetString("gemini.base_url"),
		Timeout: v.GetDuration("gemini.timeout"),
		Verbose: v.GetBool("verbose"),
	}, nil
}
