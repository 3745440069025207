package cmd

import (
	"os"

	"github.com/emrgen/taxonomy/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var httpPort string

	command := &cobra.Command{
		Use:   "serve",
		Short: "start the taxonomy server",
		Run: func(cmd *cobra.Command, args []string) {
			if httpPort == "" {
				httpPort = os.Getenv("HTTP_PORT")
			}
			if httpPort == "" {
				httpPort = "4030"
			}

			server.NewServer(httpPort).Start()
		},
	}

	command.Flags().StringVarP(&httpPort, "port", "p", "", "http port to listen on")

	return command
}
