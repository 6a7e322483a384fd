package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	cmd := &cobra.Command{
		Use:           "researchers-console",
		Short:         "Административная консоль справочника исследователей",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Без подкоманды запускается сервер
		RunE: serve.RunE,
	}
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.AddCommand(serve)
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}
