package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/v0xg/uinav/internal/config"
)

var (
	configPath string
	graphs     []string
	verbose    int
	headless   bool
	profile    string
	record     string
	fps        int
	provider   string
	model      string
)

func main() {
	// Load .env file if present
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "uinav",
		Short: "Drive a cloud management console through its navigation graph",
		Long: `uinav resolves named page-object steps (MyService/Details, appliance/LoggedIn, ...)
into a walk through the console UI and runs service workflows on top of it.

Example:
  uinav navigate MyService svc1 Edit --record edit.gif
  uinav service retire svc1`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default: ./uinav.yaml if present)")
	flags.StringSliceVar(&graphs, "graph", nil, "Scripted navigation graph file (repeatable)")
	flags.CountVarP(&verbose, "verbose", "v", "Show detailed progress (repeat for more)")
	flags.BoolVar(&headless, "headless", true, "Run the browser headless")
	flags.StringVar(&profile, "profile", "", "Chrome/Chromium profile directory for authenticated sessions (close browser first)")

	rootCmd.AddCommand(stepsCmd(), navigateCmd(), serviceCmd(), suggestCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges the config file, environment and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if flags.Changed("profile") {
		cfg.Browser.Profile = profile
	}
	if flags.Changed("verbose") {
		cfg.Log.Verbosity = verbose
	}
	cfg.Navigation.Graphs = append(cfg.Navigation.Graphs, graphs...)
	return cfg, nil
}

func newLogger(verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}
