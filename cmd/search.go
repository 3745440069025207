package cmd

import (
	"context"
	"os"
	"strconv"

	"github.com/emrgen/taxonomy"
	"github.com/emrgen/taxonomy/internal/service"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd())
}

func searchCmd() *cobra.Command {
	var query string
	var taxonID uint
	var page int
	var pageSize int

	command := &cobra.Command{
		Use:     "search",
		Short:   "search entries",
		Example: "taxonomy search -q <query> -x <taxon-id>",
		Run: func(cmd *cobra.Command, args []string) {
			client, err := taxonomy.NewClient(serverPort())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			result, err := client.SearchEntries(context.Background(), &service.SearchRequest{
				Query:    query,
				TaxonID:  taxonID,
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Official Name", "Family", "Version"})
			for _, r := range result.Results {
				table.Append([]string{
					strconv.FormatUint(uint64(r.ID), 10),
					r.Title,
					r.OfficialNameTh,
					r.Family,
					strconv.FormatInt(r.Version, 10),
				})
			}
			table.Render()

			logrus.Infof("page %d of %d, %d entries total",
				result.Pagination.Page, result.Pagination.TotalPages, result.Pagination.TotalItems)
		},
	}

	command.Flags().StringVarP(&query, "query", "q", "", "search query")
	command.Flags().UintVarP(&taxonID, "taxon-id", "x", 0, "restrict to a taxon")
	command.Flags().IntVarP(&page, "page", "p", 0, "page number")
	command.Flags().IntVarP(&pageSize, "page-size", "s", 0, "page size (10, 20 or 50)")

	command.Flags().SortFlags = false

	return command
}
