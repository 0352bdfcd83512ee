// Package cli wires configuration, storage and the conversion backend into
// the fileforge commands.
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jwulff/fileforge/internal/app"
	"github.com/jwulff/fileforge/internal/backend"
	"github.com/jwulff/fileforge/internal/config"
	"github.com/jwulff/fileforge/internal/download"
	"github.com/jwulff/fileforge/internal/logging"
	"github.com/jwulff/fileforge/internal/store"
)

// options is shared by the root command and its subcommands.
type options struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"db":           "db_path",
	"download-dir": "download_dir",
	"backend":      "backend.kind",
	"socket":       "backend.socket_path",
	"log-level":    "log.level",
	"log-file":     "log.path",
}

// Execute runs the fileforge command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Without a subcommand it starts the TUI.
func NewRootCmd() *cobra.Command {
	opts := &options{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "fileforge",
		Short: "Scan, analyze and convert files from the terminal",
		Long: `fileforge scans a file for threats, asks the conversion service to
analyze it, suggests target formats and converts it, keeping a local
history of every conversion.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.v, opts.cfgFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts.cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default <user config dir>/fileforge/config.yaml)")
	flags.String("db", "", "database path")
	flags.String("download-dir", "", "directory converted files are saved to")
	flags.String("backend", "", "conversion backend: socket or openai")
	flags.String("socket", "", "conversion service socket path")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-file", "", "write logs to this file")
	bindFlags(opts.v, flags)

	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newAccountCmd(opts))

	return rootCmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

func runTUI(cfg *config.Config) error {
	log, closer, err := logging.New(logging.Config{Level: cfg.Log.Level, Path: cfg.Log.Path})
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	m := app.New(app.Deps{
		Service: newService(cfg, log),
		Store:   st,
		Saver:   download.DirSaver{Dir: cfg.DownloadDir},
		Logger:  log,
	})

	log.Info().Str("backend", cfg.Backend.Kind).Str("db", cfg.DBPath).Msg("starting")
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	log.Info().Msg("exiting")
	return nil
}

// newService builds the configured backend behind the script cache.
func newService(cfg *config.Config, log zerolog.Logger) *backend.ScriptCache {
	var base backend.Service
	switch cfg.Backend.Kind {
	case config.BackendOpenAI:
		if cfg.OpenAI.APIKey == "" {
			log.Warn().Msg("openai backend selected without an API key; service calls will fail")
		}
		base = backend.NewOpenAIBackend(backend.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.Backend.Timeout,
		})
	default:
		base = backend.NewSocketBackend(cfg.Backend.SocketPath, cfg.Backend.Timeout)
	}
	return backend.NewScriptCache(base, cfg.ScriptCache.Size, cfg.ScriptCache.TTL)
}
