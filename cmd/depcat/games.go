package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/depressurize/internal/cli"
	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/gamelist"
	"github.com/Veraticus/depressurize/internal/model"
	"github.com/spf13/cobra"
)

func (a *app) gamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Inspect games and change their categories",
	}

	cmd.AddCommand(a.listGamesCmd())
	cmd.AddCommand(a.addGameCmd())
	cmd.AddCommand(a.setCategoryCmd())

	return cmd
}

func (a *app) listGamesCmd() *cobra.Command {
	var (
		filterName    string
		category      string
		uncategorized bool
		showHidden    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games and their categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}

			var filter *gamelist.Filter
			if filterName != "" {
				f, ok := p.Filters.Get(filterName)
				if !ok {
					return common.NewUserError(fmt.Sprintf("Filter %q does not exist.", filterName), nil)
				}
				filter = f
			}

			var rows [][]string
			for _, g := range p.Games.Games() {
				if g.Hidden && !showHidden {
					continue
				}
				if uncategorized && !g.Uncategorized() {
					continue
				}
				if category != "" && !slices.Contains(g.CategoryNames(), category) {
					continue
				}
				if !g.IncludeGame(filter) {
					continue
				}
				rows = append(rows, []string{
					strconv.Itoa(g.ID()),
					g.Name,
					g.CategoryString(nil, cli.SubtleStyle.Render("(none)")),
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No games match."))
				return nil
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"ID", "Name", "Categories"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&filterName, "filter", "", "only games passing this named filter")
	cmd.Flags().StringVar(&category, "category", "", "only games in this category")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "only games without categories")
	cmd.Flags().BoolVar(&showHidden, "hidden", false, "include hidden games")

	return cmd
}

func (a *app) addGameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Add a game to the profile by hand",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid game id %q", args[0])
			}
			p, err := a.loadProfile()
			if err != nil {
				return err
			}
			g, err := p.Games.AddGame(id, args[1])
			if err != nil {
				return err
			}
			g.Source = model.SourceManual

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added %d %q", id, args[1])))
			return saveProfile(out, p)
		},
	}
}

func (a *app) setCategoryCmd() *cobra.Command {
	var (
		mode         string
		keepFavorite bool
	)

	cmd := &cobra.Command{
		Use:   "set-category <category> <id>...",
		Short: "Add, remove or set a category on several games",
		Long: `Change the category of several games at once. With --mode set the category
becomes the only one each game holds; --keep-favorite leaves favorites in place.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bulk, err := parseBulkMode(mode)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			p, err := a.loadProfile()
			if err != nil {
				return err
			}

			var c *gamelist.Category
			if bulk == gamelist.BulkRemove {
				found, ok := p.Games.Category(args[0])
				if !ok {
					return fmt.Errorf("%w: %q", gamelist.ErrCategoryNotFound, args[0])
				}
				c = found
			} else if c, err = p.Games.GetCategory(args[0]); err != nil {
				return err
			}

			touched, err := p.Games.ApplyCategory(ids, c, bulk, keepFavorite)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if touched < len(ids) {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d of %d ids are not in the profile", len(ids)-touched, len(ids))))
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s %q on %d games", bulk, args[0], touched)))
			return saveProfile(out, p)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "add", "how to apply the category (add, remove, set)")
	cmd.Flags().BoolVar(&keepFavorite, "keep-favorite", true, "keep favorites when replacing categories")

	return cmd
}

func parseBulkMode(s string) (gamelist.BulkMode, error) {
	for _, m := range []gamelist.BulkMode{gamelist.BulkAdd, gamelist.BulkRemove, gamelist.BulkSetExclusive} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q", common.ErrInvalidConfig, s)
}
