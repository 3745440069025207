package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/emrgen/taxonomy"
	"github.com/emrgen/taxonomy/internal/service"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "entry commands",
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	entryCmd.AddCommand(createEntryCmd())
	entryCmd.AddCommand(getEntryCmd())
	entryCmd.AddCommand(updateEntryCmd())
	entryCmd.AddCommand(listEntryVersionsCmd())
	entryCmd.AddCommand(getEntryVersionCmd())
	entryCmd.AddCommand(restoreEntryCmd())
	entryCmd.AddCommand(deleteEntryCmd())
}

func createEntryCmd() *cobra.Command {
	var taxonID uint
	var title string
	var content string
	var officialName string

	var required = []string{"taxon-id", "title"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create an entry",
		Long:    `create a reference entry under the given taxon`,
		Example: "taxonomy entry create -x <taxon-id> -t <title> -c <content>",
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

			entry, err := client.CreateEntry(context.Background(), &service.CreateEntryRequest{
				TaxonID:        taxonID,
				Title:          title,
				ContentHTML:    content,
				OfficialNameTh: officialName,
				ChangedBy:      readContext().ChangedBy,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("entry created with id: %d", entry.ID)
		},
	}

	command.Flags().UintVarP(&taxonID, "taxon-id", "x", 0, "taxon id (required)")
	command.Flags().StringVarP(&title, "title", "t", "", "title of the entry (required)")
	command.Flags().StringVarP(&content, "content", "c", "", "content of the entry")
	command.Flags().StringVarP(&officialName, "official-name", "n", "", "official thai name")

	command.Flags().SortFlags = false

	return command
}

func getEntryCmd() *cobra.Command {
	var entryID uint

	var required = []string{"entry-id"}

	command := &cobra.Command{
		Use:   "get",
		Short: "get an entry",
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

			entry, err := client.GetEntry(context.Background(), entryID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Taxon", "Version", "Published"})
			table.Append([]string{
				strconv.FormatUint(uint64(entry.ID), 10),
				entry.Title,
				strconv.FormatUint(uint64(entry.TaxonID), 10),
				strconv.FormatInt(entry.Version, 10),
				strconv.FormatBool(entry.IsPublished),
			})
			table.Render()

			if entry.ContentHTML != "" {
				fmt.Println(entry.ContentHTML)
			}
		},
	}

	command.Flags().UintVarP(&entryID, "entry-id", "e", 0, "entry id (required)")

	return command
}

func updateEntryCmd() *cobra.Command {
	var entryID uint
	var baseVersion int64
	var title string
	var content string

	var required = []string{"entry-id", "base-version"}

	command := &cobra.Command{
		Use:     "update",
		Short:   "update an entry",
		Long:    `save an edit made against the given base version, rejected when someone saved first`,
		Example: "taxonomy entry update -e <entry-id> -b <base-version> -t <title> -c <content>",
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

			req := &service.UpdateEntryRequest{
				BaseVersion: baseVersion,
				ChangedBy:   readContext().ChangedBy,
			}
			if cmd.Flag("title").Changed {
				req.Title = &title
			}
			if cmd.Flag("content").Changed {
				req.ContentHTML = &content
			}

			entry, err := client.UpdateEntry(context.Background(), entryID, req)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Version"})
			table.Append([]string{strconv.FormatUint(uint64(entry.ID), 10), strconv.FormatInt(entry.Version, 10)})
			table.Render()
		},
	}

	command.Flags().UintVarP(&entryID, "entry-id", "e", 0, "entry id (required)")
	command.Flags().Int64VarP(&baseVersion, "base-version", "b", 0, "version the edit was based on (required)")
	command.Flags().StringVarP(&title, "title", "t", "", "new title")
	command.Flags().StringVarP(&content, "content", "c", "", "new content")

	command.Flags().SortFlags = false

	return command
}

func listEntryVersionsCmd() *cobra.Command {
	var entryID uint

	var required = []string{"entry-id"}

	command := &cobra.Command{
		Use:   "versions",
		Short: "list entry versions",
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

			versions, err := client.ListEntryVersions(context.Background(), entryID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Version", "Changed At", "Changed By"})
			for _, v := range versions {
				version := strconv.FormatInt(v.Version, 10)
				if v.Live {
					table.Append([]string{version + " (current)", v.ChangedAt.Format("2006-01-02 15:04:05"), v.ChangedBy})
				} else {
					table.Append([]string{fmt.Sprintf("%-11s", version), v.ChangedAt.Format("2006-01-02 15:04:05"), v.ChangedBy})
				}
			}

			table.Render()
		},
	}

	command.Flags().UintVarP(&entryID, "entry-id", "e", 0, "entry id to list versions")

	return command
}

func getEntryVersionCmd() *cobra.Command {
	var entryID uint
	var version string

	var required = []string{"entry-id", "version"}

	command := &cobra.Command{
		Use:   "version",
		Short: "get one version of an entry",
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

			entry, err := client.GetEntryVersion(context.Background(), entryID, version)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Version"})
			table.Append([]string{
				strconv.FormatUint(uint64(entry.ID), 10),
				entry.Title,
				strconv.FormatInt(entry.Version, 10),
			})
			table.Render()

			if entry.ContentHTML != "" {
				fmt.Println(entry.ContentHTML)
			}
		},
	}

	command.Flags().UintVarP(&entryID, "entry-id", "e", 0, "entry id (required)")
	command.Flags().StringVarP(&version, "version", "v", "", "version number or latest (required)")

	return command
}

func restoreEntryCmd() *cobra.Command {
	var entryID uint
	var version int64
	var baseVersion int64

	var required = []string{"entry-id", "version", "base-version"}

	command := &cobra.Command{
		Use:     "restore",
		Short:   "restore an entry to an older version",
		Long:    `copy an older version's fields into a new live version, history stays intact`,
		Example: "taxonomy entry restore -e <entry-id> -v <version> -b <base-version>",
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

			entry, err := client.RestoreEntryVersion(context.Background(), entryID, version, baseVersion, readContext().ChangedBy)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Version"})
			table.Append([]string{strconv.FormatUint(uint64(entry.ID), 10), strconv.FormatInt(entry.Version, 10)})
			table.Render()
		},
	}

	command.Flags().UintVarP(&entryID, "entry-id", "e", 0, "entry id (required)")
	command.Flags().Int64VarP(&version, "version", "v", 0, "version to restore (required)")
	command.Flags().Int64VarP(&baseVersion, "base-version", "b", 0, "current live version (required)")

	command.Flags().SortFlags = false

	return command
}

func deleteEntryCmd() *cobra.Command {
	var entryID uint

	var required = []string{"entry-id"}

	command := &cobra.Command{
		Use:   "delete",
		Short: "delete an entry",
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

			if err := client.DeleteEntry(context.Background(), entryID); err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("entry deleted: %d", entryID)
		},
	}

	command.Flags().UintVarP(&entryID, "entry-id", "e", 0, "entry id (required)")

	return command
}

func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if cmd.Flag(required).Changed == false {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		cmd.Usage()

		return true
	}

	return false
}
