// Package root contains the root command for the application
package root

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"fjacquet/pdf-ledger/internal/config"
	"fjacquet/pdf-ledger/internal/container"
	"fjacquet/pdf-ledger/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input    string
	Output   string
	Validate bool
}

var (
	// Log is the shared logger instance for commands
	Log = logging.GetLogger()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "pdf-ledger",
		Short: "A CLI tool to extract, categorize and analyse bank statement PDFs.",
		Long: `pdf-ledger extracts transactions from Dr/Cr bank statement PDFs into a ledger.
It provides transaction categorization with keyword rules or Gemini, a financial
FAQ, a question-answering chatbot and an HTTP API over the processed data.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: initialize,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeContainer()
		},
	}

	// SharedFlags holds the flags accessible to all commands
	SharedFlags = CommonFlags{}

	// ConfigFile is an explicit configuration file, overriding the search path
	ConfigFile string

	// AppConfig is the configuration loaded for the running command
	AppConfig *config.Config

	// AppContainer is built on first use by GetContainer
	AppContainer *container.Container

	// ContainerOptions are applied when the container is built. Tests use it
	// to inject extractors and classifiers.
	ContainerOptions []container.Option

	initOnce sync.Once
)

// Init registers the persistent flags. It is safe to call more than once.
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file or directory")
		Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file or directory")
		Cmd.PersistentFlags().BoolVarP(&SharedFlags.Validate, "validate", "v", false, "Validate file format before processing")
		Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default searches config.yaml in $HOME/.pdf-ledger, .pdf-ledger and .)")
	})
}

// initialize loads the environment and configuration and sets up logging.
// The container is left for GetContainer so commands can adjust the
// configuration first.
func initialize(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return err
	}
	AppConfig = cfg
	Log = config.ConfigureLogging(cfg)
	AppContainer = nil
	return nil
}

// GetConfig returns the configuration loaded for the running command.
func GetConfig() *config.Config {
	return AppConfig
}

// GetLogger returns the configured logger.
func GetLogger() logging.Logger {
	return Log
}

// GetContainer returns the dependency container, building it on first use.
func GetContainer(cmd *cobra.Command) (*container.Container, error) {
	if AppContainer != nil {
		return AppContainer, nil
	}
	if AppConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	opts := append([]container.Option{container.WithLogger(Log)}, ContainerOptions...)
	c, err := container.NewContainer(cmd.Context(), AppConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	AppContainer = c
	return c, nil
}

func closeContainer() {
	if AppContainer == nil {
		return
	}
	if err := AppContainer.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close container")
	}
	AppContainer = nil
}
