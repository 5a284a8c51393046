package cmd

import (
	"github.com/spf13/cobra"
)

// AttachCLIFlags attaches the command line flags to the given command.
func AttachCLIFlags(rootCmd *cobra.Command) {
	rootCmd.Flags().StringP("config", "c", "", "the config file to use")
	rootCmd.Flags().StringP("port", "p", "", "the port to bind the http server on")
	rootCmd.Flags().String("logfile", "", "the directory to write log files in")
	rootCmd.Flags().BoolP("verbose", "v", false, "enable verbose logging")
}
