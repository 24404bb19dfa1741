// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "filerelay",
		Short: "A file upload relay that dispatches uploads to storage providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			// 默认行为即启动服务
			return runServe()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose debug output")

	registerServeCommand()
	registerConfigsCommands()
	registerDBCommands()
	registerProvidersCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
