// Package cli is the command-line view over the catalog and favorites stores.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/college-catalog/pkg/config"
	"github.com/noah-isme/college-catalog/pkg/logger"
)

// NewRootCmd builds the catalog command tree. Configuration is loaded from .env and
// the environment each time a subcommand runs.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Browse and manage the college catalog",
		Long:          "catalog lists colleges and courses from the remote catalog, adds entries, and manages your favorite colleges.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCollegesCmd(),
		newCoursesCmd(),
		newAddCollegeCmd(),
		newAddCourseCmd(),
		newFavoritesCmd(),
		newFavoriteCmd("favorite", "Mark a college as favorite", favoriteAdd),
		newFavoriteCmd("unfavorite", "Remove a college from favorites", favoriteRemove),
		newFavoriteCmd("toggle", "Flip a college's favorite state", favoriteToggle),
		newCacheCmd(),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

type runFunc func(cmd *cobra.Command, a *app, args []string) error

// run wires the stores for one invocation and tears them down afterwards.
func run(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logr, err := logger.New(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logr.Sync() //nolint:errcheck

		a := newApp(cmd.Context(), cfg, logr)
		defer a.close()
		return fn(cmd, a, args)
	}
}
