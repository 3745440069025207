package cmd

import (
	"context"
	"strconv"

	"github.com/emrgen/taxonomy"
	"github.com/emrgen/taxonomy/internal/service"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
)

var taxonCmd = &cobra.Command{
	Use:   "taxon",
	Short: "taxon commands",
}

func init() {
	rootCmd.AddCommand(taxonCmd)
	taxonCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	taxonCmd.AddCommand(createTaxonCmd())
	taxonCmd.AddCommand(listTaxaCmd())
}

func createTaxonCmd() *cobra.Command {
	var name string
	var nameTh string
	var parentID uint

	var required = []string{"name"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a taxon",
		Example: "taxonomy taxon create -n <name> -T <thai-name>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, err := taxonomy.NewClient(serverPort())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			req := &service.CreateTaxonRequest{
				Name:   name,
				NameTh: nameTh,
			}
			if parentID > 0 {
				req.ParentID = &parentID
			}

			taxon, err := client.CreateTaxon(context.Background(), req)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("taxon created with id: %d", taxon.ID)
		},
	}

	command.Flags().StringVarP(&name, "name", "n", "", "taxon name (required)")
	command.Flags().StringVarP(&nameTh, "name-th", "T", "", "thai name")
	command.Flags().UintVarP(&parentID, "parent-id", "P", 0, "parent taxon id")

	command.Flags().SortFlags = false

	return command
}

func listTaxaCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "list taxa",
		Run: func(cmd *cobra.Command, args []string) {
			client, err := taxonomy.NewClient(serverPort())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			taxa, err := client.ListTaxa(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Name", "Thai Name", "Parent"})
			for _, t := range taxa {
				parent := ""
				if t.ParentID != nil {
					parent = strconv.FormatUint(uint64(*t.ParentID), 10)
				}
				table.Append([]string{strconv.FormatUint(uint64(t.ID), 10), t.Name, t.NameTh, parent})
			}
			table.Render()
		},
	}

	return command
}
