package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/depressurize/internal/cli"
	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/profile"
	"github.com/Veraticus/depressurize/internal/storage"
)

// initStorage opens the metadata database and brings its schema up to date.
func (a *app) initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(a.settings.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadProfile reads the configured profile.
func (a *app) loadProfile() (*profile.Profile, error) {
	p, err := profile.Load(a.settings.Profile.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, common.NewUserError(
			fmt.Sprintf("No profile at %s. Create one with 'depcat profile init'.", a.settings.Profile.Path), err)
	}
	return p, err
}

// saveProfile writes p back to where it was loaded from.
func saveProfile(w io.Writer, p *profile.Profile) error {
	if err := p.Save(""); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	fmt.Fprintln(w, cli.FormatSuccess("Saved "+p.Path))
	return nil
}

// parseIDs accepts ids as separate arguments, comma separated lists, or both.
func parseIDs(args []string) ([]int, error) {
	var ids []int
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid game id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
