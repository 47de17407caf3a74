package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nconklindev/scanmerge/internal/config"
	"github.com/nconklindev/scanmerge/internal/logger"
	"github.com/nconklindev/scanmerge/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scanmerge",
		Short: "Merge WhiteRabbit scan reports into one workbook",
		Long: `scanmerge combines several WhiteRabbit scan report workbooks into one.
"Table Overview" and "Field Overview" are concatenated across reports and every
other sheet is merged with the sheets of the same name.

Run without arguments for the interactive file picker.`,
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}
	rootCmd.SetVersionTemplate("scanmerge {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ./"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (DEBUG level)")

	rootCmd.AddCommand(newMergeCmd())

	return rootCmd
}

// setup loads the configuration and starts the logger, echoing to console
func setup(console io.Writer) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(console, cfg.Log.File, verbose || cfg.Log.Verbose); err != nil {
		return nil, err
	}
	logger.Debug("scanmerge %s starting, output dir %s", version, cfg.Output.Dir)

	return cfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Console logging would draw over the alt screen
	cfg, err := setup(io.Discard)
	if err != nil {
		return err
	}
	defer logger.Close()

	p := tea.NewProgram(ui.InitialModel(cfg, time.Now()), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
