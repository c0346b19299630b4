package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/depressurize/internal/autocat"
	"github.com/Veraticus/depressurize/internal/cli"
	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/curator"
	"github.com/Veraticus/depressurize/internal/engine"
	"github.com/Veraticus/depressurize/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) autocatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autocat",
		Short: "Manage and run AutoCat rules",
		Long:  `List, add, remove and run the AutoCat rules stored in the profile.`,
	}

	cmd.AddCommand(a.autocatListCmd())
	cmd.AddCommand(autocatTypesCmd())
	cmd.AddCommand(a.autocatShowCmd())
	cmd.AddCommand(a.autocatAddCmd())
	cmd.AddCommand(a.autocatRemoveCmd())
	cmd.AddCommand(a.autocatRunCmd())

	return cmd
}

func (a *app) autocatListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the profile's AutoCat rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(p.AutoCats) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No AutoCat rules. Use 'depcat autocat add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(p.AutoCats))
			for _, ac := range p.AutoCats {
				filter := ac.Meta().FilterName()
				if filter == "" {
					filter = cli.SubtleStyle.Render("(none)")
				}
				rows = append(rows, []string{ac.Meta().Name, typeLabel(ac.Type()), filter})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Name", "Type", "Filter"}, rows))
			return nil
		},
	}
}

func autocatTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the available AutoCat rule types",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, t := range autocat.Types() {
				fmt.Fprintln(cmd.OutOrStdout(), typeLabel(t))
			}
		},
	}
}

func (a *app) autocatShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a rule's configuration as XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}
			ac, ok := p.AutoCats.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", autocat.ErrUnknownRule, args[0])
			}
			data, err := autocat.Marshal(ac)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func (a *app) autocatAddCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "add <type> <name>",
		Short: "Add a rule with default settings",
		Long: `Add a rule of the given type with its default settings. The type may be given
with or without the AutoCat prefix, e.g. "Genre" or "AutoCatGenre".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}

			ac, err := autocat.New(parseType(args[0]), args[1])
			if err != nil {
				return err
			}
			if filter != "" {
				if _, ok := p.Filters.Get(filter); !ok {
					return common.NewUserError(fmt.Sprintf("Filter %q does not exist.", filter), nil)
				}
				ac.Meta().Filter = filter
			}
			if err := p.AddRule(ac); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added %s rule %q", typeLabel(ac.Type()), args[1])))
			return saveProfile(out, p)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "name of a filter limiting the games the rule touches")

	return cmd
}

func (a *app) autocatRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProfile()
			if err != nil {
				return err
			}
			if !p.RemoveRule(args[0]) {
				return fmt.Errorf("%w: %q", autocat.ErrUnknownRule, args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Removed rule %q", args[0])))
			return saveProfile(out, p)
		},
	}
}

func (a *app) autocatRunCmd() *cobra.Command {
	var (
		all       bool
		gameIDs   []string
		dryRun    bool
		noRefresh bool
		offline   bool
	)

	cmd := &cobra.Command{
		Use:   "run [name...]",
		Short: "Apply AutoCat rules to the game list",
		Long: `Run the named rules in order, or every rule with --all. Rules only touch the
games passing their filter. Games missing metadata are retried once, picking up
rows another process imported into the database during the run. The profile is
saved when every rule completes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return common.NewUserError("Name the rules to run or pass --all.", nil)
			}
			ids, err := parseIDs(gameIDs)
			if err != nil {
				return err
			}

			p, err := a.loadProfile()
			if err != nil {
				return err
			}

			rules := p.AutoCats
			if !all {
				rules = make(autocat.List, 0, len(args))
				for _, name := range args {
					ac, ok := p.AutoCats.Lookup(name)
					if !ok {
						return fmt.Errorf("%w: %q", autocat.ErrUnknownRule, name)
					}
					rules = append(rules, ac)
				}
			}

			store, err := a.initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			db, err := store.LoadDatabase(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load metadata: %w", err)
			}

			opts := []engine.Option{
				engine.WithFilters(p.Filters),
				engine.WithRules(p.AutoCats),
				engine.WithProgress(cli.NewProgress(cmd.ErrOrStderr())),
				engine.WithLogger(slog.Default()),
			}
			opts = append(opts, engine.WithCurators(a.curatorFetcher(store, offline)))
			if !noRefresh {
				opts = append(opts, engine.WithRefresher(storage.NewRefresher(store, db, slog.Default())))
			}
			runner := engine.New(p.Games, db, opts...)

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), !dryRun)
			defer handler.Stop()

			stats, runErr := runner.RunAll(ctx, engine.AllRequest{Rules: rules, Games: ids})

			out := cmd.OutOrStdout()
			printRunStats(out, stats)

			if runErr != nil {
				if errors.Is(runErr, context.Canceled) {
					return common.NewUserError("Run interrupted; the profile was not saved.", runErr)
				}
				return runErr
			}
			if dryRun {
				fmt.Fprintln(out, cli.FormatInfo("Dry run: the profile was not saved."))
				return nil
			}
			return saveProfile(out, p)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "run every rule in profile order")
	cmd.Flags().StringSliceVar(&gameIDs, "games", nil, "only categorize these game ids")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "categorize without saving the profile")
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "skip the retry for games missing metadata (it only finds rows imported during the run)")
	cmd.Flags().BoolVar(&offline, "offline", false, "do not contact the store; curator rules use cached data only")

	return cmd
}

// curatorFetcher builds the store client wrapped in the SQLite recommendation cache.
// Offline fetchers only serve cached recommendations.
func (a *app) curatorFetcher(store *storage.SQLiteStorage, offline bool) *curator.CachingFetcher {
	if offline {
		return curator.NewCachingFetcher(curator.Offline{}, store, 0)
	}
	client := curator.NewClient(curator.Config{
		BaseURL:           a.settings.Curator.BaseURL,
		Timeout:           a.settings.Curator.Timeout,
		PageSize:          a.settings.Curator.PageSize,
		RequestsPerMinute: a.settings.Curator.RequestsPerMinute,
		Retry:             a.settings.RetryOptions(),
		Logger:            slog.Default(),
	})
	return curator.NewCachingFetcher(client, store, a.settings.Curator.CacheTTL)
}

func printRunStats(w io.Writer, stats []engine.Stats) {
	if len(stats) == 0 {
		return
	}

	rows := make([][]string, 0, len(stats))
	var total time.Duration
	refreshed := 0
	for _, s := range stats {
		total += s.Duration
		refreshed += s.Refreshed
		status := cli.SuccessStyle.Render("ok")
		switch {
		case s.Canceled:
			status = cli.WarningStyle.Render("canceled")
		case s.ConfigErr != nil:
			status = cli.WarningStyle.Render("config: " + s.ConfigErr.Error())
		}
		rows = append(rows, []string{
			s.Rule,
			strconv.Itoa(s.Succeeded),
			strconv.Itoa(s.Filtered),
			strconv.Itoa(s.NotInDatabase),
			strconv.Itoa(s.Failed),
			s.Duration.Round(time.Millisecond).String(),
			status,
		})
	}
	table := cli.RenderTable(
		[]string{"Rule", "Categorized", "Filtered", "No metadata", "Failed", "Time", "Status"},
		rows)
	footer := fmt.Sprintf("%d rules in %s", len(stats), total.Round(time.Millisecond))
	if refreshed > 0 {
		footer += fmt.Sprintf(", %d games refreshed", refreshed)
	}
	fmt.Fprintln(w, cli.RenderBox(cli.ChartIcon+" AutoCat summary", table, footer))
}

func parseType(name string) autocat.Type {
	if strings.HasPrefix(name, "AutoCat") {
		return autocat.Type(name)
	}
	return autocat.Type("AutoCat" + name)
}

func typeLabel(t autocat.Type) string {
	return strings.TrimPrefix(string(t), "AutoCat")
}
