package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "reference entry management tool",
	Example: `taxonomy serve
taxonomy entry create -x <taxon-id> -t <title> -c <content>
taxonomy entry get -e <entry-id>
taxonomy entry update -e <entry-id> -b <base-version> -t <title>
taxonomy entry versions -e <entry-id>
taxonomy entry restore -e <entry-id> -v <version> -b <base-version>
taxonomy search -q <query>`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(contextCommand)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
