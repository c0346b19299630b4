package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/depressurize/internal/cli"
	"github.com/Veraticus/depressurize/internal/gamelist"
	"github.com/Veraticus/depressurize/internal/profile"
	"github.com/spf13/cobra"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List, add, rename, delete, merge and prune the categories in the profile.`,
	}

	cmd.AddCommand(a.listCategoriesCmd())
	cmd.AddCommand(a.addCategoryCmd())
	cmd.AddCommand(a.renameCategoryCmd())
	cmd.AddCommand(a.deleteCategoryCmd())
	cmd.AddCommand(a.mergeCategoryCmd())
	cmd.AddCommand(a.pruneCategoriesCmd())

	return cmd
}

func (a *app) listCategoriesCmd() *cobra.Command {
	var emptyOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories with their game counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}

			var rows [][]string
			for _, c := range p.Games.Categories() {
				if emptyOnly && c.Count() > 0 {
					continue
				}
				rows = append(rows, []string{c.Name(), strconv.Itoa(c.Count())})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No categories found."))
				return nil
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Name", "Games"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&emptyOnly, "empty", false, "only list categories no game holds")

	return cmd
}

func (a *app) addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create an empty category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}
			if _, err := p.Games.AddCategory(args[0]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added category %q", args[0])))
			return saveProfile(out, p)
		},
	}
}

func (a *app) renameCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a category, keeping its games",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, c, err := a.profileCategory(args[0])
			if err != nil {
				return err
			}
			if err := p.Games.RenameCategory(c, args[1]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Renamed %q to %q", args[0], args[1])))
			return saveProfile(out, p)
		},
	}
}

func (a *app) deleteCategoryCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category and remove it from every game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, c, err := a.profileCategory(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes && c.Count() > 0 {
				question := fmt.Sprintf("Remove %q from %d games?", c.Name(), c.Count())
				ok, err := cli.Confirm(cmd.Context(), cli.NewNonBlockingReader(cmd.InOrStdin()), out, question)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Nothing deleted."))
					return nil
				}
			}

			if err := p.Games.RemoveCategory(c); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted category %q", args[0])))
			return saveProfile(out, p)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func (a *app) mergeCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <from> <into>",
		Short: "Move every game from one category into another and delete the first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, from, err := a.profileCategory(args[0])
			if err != nil {
				return err
			}
			into, err := p.Games.GetCategory(args[1])
			if err != nil {
				return err
			}

			moved := from.Count()
			if err := p.Games.MergeCategory(from, into); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Merged %d games from %q into %q", moved, args[0], args[1])))
			return saveProfile(out, p)
		},
	}
}

func (a *app) pruneCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete every category no game holds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			removed := p.Games.RemoveEmptyCategories()
			if removed == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No empty categories."))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Removed %d empty categories", removed)))
			return saveProfile(out, p)
		},
	}
}

// profileCategory loads the profile and resolves an existing category by name.
func (a *app) profileCategory(name string) (*profile.Profile, *gamelist.Category, error) {
	p, err := a.loadProfile()
	if err != nil {
		return nil, nil, err
	}
	c, ok := p.Games.Category(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", gamelist.ErrCategoryNotFound, name)
	}
	return p, c, nil
}
