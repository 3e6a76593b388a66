package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"glassngold/cmd/glassngold/ui"
	"glassngold/internal/appraisal"
	"glassngold/internal/config"
	"glassngold/internal/logging"
	"glassngold/internal/pipeline"
	"glassngold/internal/portfolio"
	"glassngold/internal/render"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiKey     string
	envFile    string
	backend    string

	cfg    *config.Config
	logger *zap.Logger

	// newAppraiser is swapped in tests.
	newAppraiser = appraisal.New
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "glassngold",
	Short: "GLA$$ & GOLD - luxury listings for distressed spaces",
	Long: `GLA$$ & GOLD turns a photo of a damaged or abandoned space into a satirical
luxury real-estate listing, appraised by Elie "Fresh" Mansour via Gemini.

Run without arguments to start the interactive terminal UI.
Set API_KEY or GEMINI_API_KEY (environment, .env or config) before appraising.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c

		// The TUI owns the terminal; it only logs when a file sink is set.
		if cmd == cmd.Root() && cfg.Logging.File == "" {
			logger = zap.NewNop()
			logging.SetBase(logger)
			return nil
		}

		logger, err = logging.Initialize(cfg.Logging.ToLogging())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set API_KEY / GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Appraisal backend: sdk or rest")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(appraiseCmd)
	rootCmd.AddCommand(portfolioCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves .env, the config file, the environment and flags, in
// increasing precedence.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		c.Appraisal.APIKey = apiKey
	}
	if backend != "" {
		c.Appraisal.Backend = backend
	}
	if verbose {
		c.Logging.Level = "debug"
	}
	return c, nil
}

// newPipeline validates c and wires the appraiser to a freshly seeded store.
func newPipeline(ctx context.Context, c *config.Config) (*pipeline.Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	a, err := newAppraiser(ctx, c.Appraisal)
	if err != nil {
		return nil, err
	}
	logging.Get(logging.CategoryBoot).Info("pipeline ready",
		zap.String("backend", c.Appraisal.Backend),
		zap.String("model", c.Appraisal.Model))
	return pipeline.New(portfolio.NewSeeded(time.Now()), a), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	m, err := ui.NewModel(ctx, p, render.ThemeByName(cfg.UI.Theme), cfg.UI.Width, wd)
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
