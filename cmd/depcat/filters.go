package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/depressurize/internal/cli"
	"github.com/Veraticus/depressurize/internal/gamelist"
	"github.com/spf13/cobra"
)

func (a *app) filtersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage named game filters",
	}

	cmd.AddCommand(a.listFiltersCmd())
	cmd.AddCommand(a.addFilterCmd())
	cmd.AddCommand(a.removeFilterCmd())

	return cmd
}

func (a *app) listFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List filters and how many games pass each",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if p.Filters.Len() == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No filters. Use 'depcat filters add' to create one."))
				return nil
			}

			games := p.Games.Games()
			rows := make([][]string, 0, p.Filters.Len())
			for _, f := range p.Filters.All() {
				passing := 0
				for _, g := range games {
					if g.IncludeGame(f) {
						passing++
					}
				}
				rows = append(rows, []string{f.Name, describeFilter(f), fmt.Sprint(passing)})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Name", "Conditions", "Games"}, rows))
			return nil
		},
	}
}

func (a *app) addFilterCmd() *cobra.Command {
	var (
		f             gamelist.Filter
		uncategorized string
		hidden        string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a filter",
		Long: `Create a filter. A game passes when it holds at least one --allow category
(if any are given), every --require category, no --exclude category, and matches
the --uncategorized and --hidden conditions (yes, no or any).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if f.Uncategorized, err = parseTriState(uncategorized); err != nil {
				return err
			}
			if f.Hidden, err = parseTriState(hidden); err != nil {
				return err
			}
			f.Name = args[0]

			p, err := a.loadProfile()
			if err != nil {
				return err
			}
			if err := p.Filters.Add(f.Clone()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added filter %q", f.Name)))
			return saveProfile(out, p)
		},
	}

	cmd.Flags().StringSliceVar(&f.Allow, "allow", nil, "categories of which a game needs at least one")
	cmd.Flags().StringSliceVar(&f.Require, "require", nil, "categories a game must all hold")
	cmd.Flags().StringSliceVar(&f.Exclude, "exclude", nil, "categories a game must not hold")
	cmd.Flags().StringVar(&f.NameContains, "name-contains", "", "case-insensitive text the game name must contain")
	cmd.Flags().StringVar(&uncategorized, "uncategorized", "any", "yes, no or any")
	cmd.Flags().StringVar(&hidden, "hidden", "any", "yes, no or any")

	return cmd
}

func (a *app) removeFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}
			if !p.Filters.Remove(args[0]) {
				return fmt.Errorf("filter %q not found", args[0])
			}

			out := cmd.OutOrStdout()
			for _, ac := range p.AutoCats {
				if ac.Meta().Filter == args[0] {
					fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Rule %q still refers to filter %q", ac.Meta().Name, args[0])))
				}
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Removed filter %q", args[0])))
			return saveProfile(out, p)
		},
	}
}

func parseTriState(s string) (gamelist.TriState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return gamelist.Any, nil
	case "yes", "true":
		return gamelist.Yes, nil
	case "no", "false":
		return gamelist.No, nil
	}
	return gamelist.Any, fmt.Errorf("invalid condition %q: want yes, no or any", s)
}

func describeFilter(f *gamelist.Filter) string {
	var parts []string
	if len(f.Allow) > 0 {
		parts = append(parts, "any of "+strings.Join(f.Allow, ", "))
	}
	if len(f.Require) > 0 {
		parts = append(parts, "all of "+strings.Join(f.Require, ", "))
	}
	if len(f.Exclude) > 0 {
		parts = append(parts, "none of "+strings.Join(f.Exclude, ", "))
	}
	if f.NameContains != "" {
		parts = append(parts, fmt.Sprintf("name contains %q", f.NameContains))
	}
	switch f.Uncategorized {
	case gamelist.Yes:
		parts = append(parts, "uncategorized")
	case gamelist.No:
		parts = append(parts, "categorized")
	}
	switch f.Hidden {
	case gamelist.Yes:
		parts = append(parts, "hidden")
	case gamelist.No:
		parts = append(parts, "visible")
	}
	if len(parts) == 0 {
		return "(all games)"
	}
	return strings.Join(parts, "; ")
}
