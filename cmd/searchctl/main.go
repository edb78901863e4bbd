package main

import (
	"os"

	"github.com/contentgrid/content-search/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	command := NewSearchCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewSearchCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searchctl [flags] [options]",
		Short: "searchctl queries the content search service.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdSearch())
	cmd.AddCommand(cli.NewCmdStatus())

	return cmd
}
