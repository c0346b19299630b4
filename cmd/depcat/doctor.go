package main

import (
	"fmt"
	"io"

	"github.com/Veraticus/depressurize/internal/autocat"
	"github.com/Veraticus/depressurize/internal/cli"
	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/profile"
	"github.com/Veraticus/depressurize/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the profile and metadata database for problems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("depcat doctor"))

			p, err := a.loadProfile()
			if err != nil {
				return err
			}
			problems := checkProfile(out, p)

			store, err := a.initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			version, err := store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			if version != storage.ExpectedSchemaVersion {
				problems++
				fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("Database schema is v%d, expected v%d", version, storage.ExpectedSchemaVersion)))
			} else {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database schema v%d", version)))
			}

			db, err := store.LoadDatabase(cmd.Context())
			if err != nil {
				return err
			}
			missing := 0
			for _, g := range p.Games.Games() {
				if !g.IsShortcut() && !db.Contains(g.ID()) {
					missing++
				}
			}
			if missing > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d games have no metadata; import it with 'depcat metadata import'", missing)))
			} else {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Metadata covers all %d games", p.Games.Len())))
			}

			if problems > 0 {
				return common.NewUserError(fmt.Sprintf("Found %d problems.", problems), nil)
			}
			return nil
		},
	}
}

// checkProfile reports structural problems and dangling references; it returns their count.
func checkProfile(out io.Writer, p *profile.Profile) int {
	problems := 0
	if err := p.Games.Verify(); err != nil {
		problems++
		fmt.Fprintln(out, cli.FormatError("Game list is inconsistent: "+err.Error()))
	} else {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Game list is consistent (%d games, %d categories)", p.Games.Len(), p.Games.CategoryCount())))
	}

	for _, ac := range p.AutoCats {
		meta := ac.Meta()
		if name := meta.FilterName(); name != "" {
			if _, ok := p.Filters.Get(name); !ok {
				problems++
				fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("Rule %q uses unknown filter %q", meta.Name, name)))
			}
		}
		if g, ok := ac.(*autocat.Group); ok {
			for _, member := range g.Autocats {
				if _, ok := p.AutoCats.Lookup(member); !ok {
					problems++
					fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("Group %q lists unknown rule %q", meta.Name, member)))
				}
			}
		}
	}
	return problems
}
