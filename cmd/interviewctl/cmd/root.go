package cmd

import (
	"os"

	configloader "github.com/foxseedlab/callinterview/external/config"
	"github.com/foxseedlab/callinterview/internal/bootstrap"
	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interviewctl",
	Short: "Operate the phone interview service",
	Long: `Operate the phone interview service from the command line.

Commands read the same environment (and .env file) as the server and talk to
the same store and provider.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(fetchTranscriptsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := configloader.Load()
	if err != nil {
		return nil, err
	}
	bootstrap.InitLogger(cfg, os.Stderr)
	return cfg, nil
}

func newInjector() (do.Injector, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.NewInjector(cfg), nil
}
