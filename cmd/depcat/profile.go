package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Veraticus/depressurize/internal/cli"
	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/profile"
	"github.com/spf13/cobra"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create and inspect the profile",
	}

	cmd.AddCommand(a.profileInitCmd())
	cmd.AddCommand(a.profileShowCmd())
	cmd.AddCommand(a.profileIgnoreCmd())

	return cmd
}

func (a *app) profileInitCmd() *cobra.Command {
	var (
		steamID int64
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new profile with the default AutoCat rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.settings.Profile.Path
			if _, err := os.Stat(path); err == nil && !force {
				return common.NewUserError(fmt.Sprintf("Profile %s already exists; use --force to replace it.", path), nil)
			}

			p := profile.New()
			p.SteamID64 = steamID
			if err := p.Save(path); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created profile %s with %d AutoCat rules", path, len(p.AutoCats))))
			return nil
		},
	}

	cmd.Flags().Int64Var(&steamID, "steam-id", 0, "64-bit Steam id of the profile owner")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing profile")

	return cmd
}

func (a *app) profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}

			o := p.Options
			rows := [][]string{
				{"Path", p.Path},
				{"Steam ID", strconv.FormatInt(p.SteamID64, 10)},
				{"Games", strconv.Itoa(p.Games.Len())},
				{"Categories", strconv.Itoa(p.Games.CategoryCount())},
				{"AutoCat rules", strconv.Itoa(len(p.AutoCats))},
				{"Filters", strconv.Itoa(p.Filters.Len())},
				{"Ignored", strconv.Itoa(len(p.Ignored()))},
				{"Include shortcuts", strconv.FormatBool(o.IncludeShortcuts)},
				{"Auto update", strconv.FormatBool(o.AutoUpdate)},
				{"Auto export", strconv.FormatBool(o.AutoExport)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Setting", "Value"}, rows))
			return nil
		},
	}
}

func (a *app) profileIgnoreCmd() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "ignore <id>...",
		Short: "Add games to the ignore list",
		Long: `Ignored catalog games are dropped from the profile and skipped when it is
loaded again. Games added manually are never dropped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			p, err := a.loadProfile()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				if remove {
					if p.Unignore(id) {
						fmt.Fprintf(out, "Unignored %d\n", id)
					}
					continue
				}
				if !p.Ignore(id) {
					continue
				}
				if g, ok := p.Games.Game(id); ok && g.Source.IsCatalog() {
					p.Games.RemoveGame(id)
				}
				fmt.Fprintf(out, "Ignored %d\n", id)
			}
			return saveProfile(out, p)
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "remove the ids from the ignore list instead")

	return cmd
}
