package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/filerelay/pkg/configs"
	"github.com/yeisme/filerelay/pkg/internal/provider"
)

var (
	providersCmd = &cobra.Command{
		Use:   "providers",
		Short: "Upload provider related commands",
	}

	providersListCmd = &cobra.Command{
		Use:   "ls",
		Short: "list providers and their configuration state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			reg := provider.BuildRegistry(context.Background(), configs.GetConfig())

			fmt.Fprintln(cmd.OutOrStdout(), "Providers:")
			for _, e := range reg.Entries() {
				state := "not configured"
				if e.Configured() {
					state = "configured"
				}

				fmt.Fprintf(cmd.OutOrStdout(), " - %-8s %-10s %s\n", e.Name, e.DisplayName, state)
			}

			return nil
		},
	}
)

// registerProvidersCommands 注册 provider 相关命令.
func registerProvidersCommands() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.AddCommand(providersListCmd)
}
