package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/venue-opener/internal/config"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

var configPath string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "venueopen",
		Short:        "Posts a daily \"venue opened\" message to a chat webhook at opening time",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (env vars override it; CONFIG_FILE also works)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCounterCmd())
	root.AddCommand(newHoursCmd())
	root.AddCommand(newPasswdCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}
