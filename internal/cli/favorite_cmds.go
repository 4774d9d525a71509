package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/college-catalog/internal/projection"
	"github.com/noah-isme/college-catalog/internal/store"
)

type favoriteAction func(ctx context.Context, favorites *store.FavoritesStore, collegeID int64) error

func favoriteAdd(ctx context.Context, f *store.FavoritesStore, id int64) error {
	return f.AddFavorite(ctx, id)
}

func favoriteRemove(ctx context.Context, f *store.FavoritesStore, id int64) error {
	return f.RemoveFavorite(ctx, id)
}

func favoriteToggle(ctx context.Context, f *store.FavoritesStore, id int64) error {
	return f.Toggle(ctx, id)
}

func newFavoriteCmd(use, short string, action favoriteAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <college-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid college id %q", args[0])
			}
			ctx := cmd.Context()
			a.favorites.FetchFavorites(ctx)
			if msg := a.favorites.Err(); msg != "" {
				return errors.New(msg)
			}
			if err := action(ctx, a.favorites, id); err != nil {
				return commandError(err)
			}
			state := "not a favorite"
			if a.favorites.IsFavorite(id) {
				state = "a favorite"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "College %d is %s\n", id, state)
			return nil
		}),
	}
}

func newFavoritesCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List your favorite colleges",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			a.favorites.FetchFavorites(ctx)
			if msg := a.favorites.Err(); msg != "" {
				return errors.New(msg)
			}
			a.catalog.FetchColleges(ctx)
			snap := a.catalog.Snapshot()

			favorites := projection.FavoriteColleges(snap.Colleges, a.favorites.IsFavorite)
			shown := projection.FilterColleges(favorites, flags.search)
			if err := flags.emit(cmd, a, projection.CollegesTable(shown, a.favorites.IsFavorite), len(shown), len(favorites), "favorites"); err != nil {
				return err
			}
			if snap.Error != "" {
				return errors.New(snap.Error)
			}
			return nil
		}),
	}
	flags.bind(cmd)
	return cmd
}
