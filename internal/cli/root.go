package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time with -ldflags "-X .../cli.version=..."
var version = "dev"

var (
	cfgFile string
	verbose bool
	noCache bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil - keyword threat analysis of call transcripts",
	Long: `Vigil scans multilingual call transcripts (English, Hindi, Urdu and
Kashmiri via Urdu) for threat-indicator keywords and produces an explainable
threat score for each session.

Every score can be traced back to the keywords that produced it. Vigil is a
triage aid for human reviewers, not a classifier.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Vigil.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "vigil %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.vigil/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&noCache, "no-cache", false, "disable the analysis record cache")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.String("db", "", "SQLite database path")
	flags.String("store", "", "store driver (sqlite, memory)")
	flags.String("dictionary", "", "keyword dictionary YAML file (default: built-in)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("store.path", flags.Lookup("db"))
	_ = viper.BindPFlag("store.driver", flags.Lookup("store"))
	_ = viper.BindPFlag("dictionary.path", flags.Lookup("dictionary"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".vigil"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// VIGIL_SPEECH_API_KEY overrides speech.api_key
	viper.SetEnvPrefix("VIGIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
		}
	} else if verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment overrides apply
// during Unmarshal
func setDefaults(cfg *model.Config) {
	viper.SetDefault("dictionary.path", cfg.Dictionary.Path)
	viper.SetDefault("dictionary.base_language", cfg.Dictionary.BaseLanguage)

	viper.SetDefault("store.driver", cfg.Store.Driver)
	viper.SetDefault("store.path", cfg.Store.Path)

	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.ttl", cfg.Cache.TTL)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)

	viper.SetDefault("speech.provider", cfg.Speech.Provider)
	viper.SetDefault("speech.fallback", cfg.Speech.Fallback)
	viper.SetDefault("speech.model", cfg.Speech.Model)
	viper.SetDefault("speech.translation_model", cfg.Speech.TranslationModel)
	viper.SetDefault("speech.api_key", cfg.Speech.APIKey)
	viper.SetDefault("speech.base_url", cfg.Speech.BaseURL)
	viper.SetDefault("speech.timeout", cfg.Speech.Timeout)
	viper.SetDefault("speech.requests_per_second", cfg.Speech.RequestsPerSecond)
	viper.SetDefault("speech.burst", cfg.Speech.Burst)
	viper.SetDefault("speech.http_proxy", cfg.Speech.HTTPProxy)
	viper.SetDefault("speech.https_proxy", cfg.Speech.HTTPSProxy)
	viper.SetDefault("speech.no_proxy", cfg.Speech.NoProxy)

	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("output.json_dir", cfg.Output.JSONDir)
	viper.SetDefault("output.markdown", cfg.Output.Markdown)

	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.format", cfg.Log.Format)

	viper.SetDefault("metrics.addr", cfg.Metrics.Addr)
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if noCache {
		cfg.Cache.Enabled = false
	}
	if cfg.Speech.APIKey == "" {
		cfg.Speech.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Concurrency.Workers < 1 {
		return nil, fmt.Errorf("concurrency.workers must be at least 1, got %d", cfg.Concurrency.Workers)
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs go to stderr so stdout stays
// clean for reports.
func newLogger(cfg model.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q (supported: text, json)", cfg.Format)
	}
	return logger, nil
}
