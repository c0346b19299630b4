package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/depressurize/internal/cli"
	"github.com/spf13/cobra"
)

func (a *app) metadataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Manage the game metadata database",
		Long: `Import, export and inspect the store metadata AutoCat rules read: genres, tags,
flags, release dates, reviews, play times, languages and VR support.`,
	}

	cmd.AddCommand(a.importMetadataCmd())
	cmd.AddCommand(a.exportMetadataCmd())
	cmd.AddCommand(a.metadataStatsCmd())
	cmd.AddCommand(a.backupMetadataCmd())

	return cmd
}

func (a *app) importMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|file.yaml>...",
		Short: "Import metadata entries, replacing stored entries with the same id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			for _, path := range args {
				n, err := store.ImportFile(cmd.Context(), path)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d entries from %s", n, path)))
			}
			return nil
		},
	}
}

func (a *app) exportMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.json|file.yaml>",
		Short: "Export every stored metadata entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.ExportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d entries to %s", n, args[0])))
			return nil
		},
	}
}

func (a *app) metadataStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the metadata database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Database", store.Path()},
				{"Entries", strconv.Itoa(stats.Total)},
				{"Scraped", strconv.Itoa(stats.Scraped)},
				{"With play times", strconv.Itoa(stats.WithHltb)},
				{"Distinct genres", strconv.Itoa(stats.Genres)},
				{"Distinct tags", strconv.Itoa(stats.Tags)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{cli.ChartIcon + " Metadata", ""}, rows))
			return nil
		},
	}
}

func (a *app) backupMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <dest>",
		Short: "Write a consistent copy of the metadata database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Backup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Backed up metadata to "+args[0]))
			return nil
		},
	}
}
