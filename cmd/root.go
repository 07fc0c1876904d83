package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the CLI
var rootCmd = newRootCmd()

// newRootCmd builds the command tree. Each call returns independent flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pcb-sim",
		Short:         "Process scheduling and memory allocation simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log")
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q", logLevel)
			}
			logrus.SetLevel(level)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	addConfigFlags(pf)

	root.AddCommand(newRunCmd(), newDemoCmd(), newConsoleCmd())
	return root
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
