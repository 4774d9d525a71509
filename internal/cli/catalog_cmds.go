package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/college-catalog/internal/models"
	"github.com/noah-isme/college-catalog/internal/projection"
	"github.com/noah-isme/college-catalog/pkg/export"
)

type listFlags struct {
	search     string
	exportPath string
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Filter by case-insensitive substring")
	cmd.Flags().StringVarP(&f.exportPath, "export", "o", "", "Also write the listing to a .csv or .pdf file")
}

// emit prints the listing and writes the export when requested.
func (f *listFlags) emit(cmd *cobra.Command, a *app, data export.Dataset, shown, total int, noun string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, projection.ShowingLine(shown, total, noun))
	if shown > 0 {
		if err := printTable(out, data); err != nil {
			return err
		}
	}
	if f.exportPath != "" {
		path, err := writeExport(a.cfg.Export.Dir, f.exportPath, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d %s to %s\n", shown, noun, path)
	}
	return nil
}

func newCollegesCmd() *cobra.Command {
	var flags listFlags
	var favoritesOnly bool
	cmd := &cobra.Command{
		Use:   "colleges",
		Short: "List colleges",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			a.catalog.FetchColleges(ctx)
			snap := a.catalog.Snapshot()

			isFavorite := func(int64) bool { return false }
			if a.cfg.API.Token != "" || favoritesOnly {
				a.favorites.FetchFavorites(ctx)
				if msg := a.favorites.Err(); msg != "" && favoritesOnly {
					return errors.New(msg)
				}
				isFavorite = a.favorites.IsFavorite
			}

			colleges := projection.FilterColleges(snap.Colleges, flags.search)
			if favoritesOnly {
				colleges = projection.FavoriteColleges(colleges, isFavorite)
			}
			if err := flags.emit(cmd, a, projection.CollegesTable(colleges, isFavorite), len(colleges), len(snap.Colleges), "colleges"); err != nil {
				return err
			}
			if snap.Error != "" {
				return errors.New(snap.Error)
			}
			return nil
		}),
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&favoritesOnly, "favorites", false, "Show only favorite colleges")
	return cmd
}

func newCoursesCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List colleges with their courses",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			a.catalog.FetchCollegesWithCourses(cmd.Context())
			snap := a.catalog.Snapshot()

			items := projection.FilterCourses(snap.CollegesWithCourses, flags.search)
			if err := flags.emit(cmd, a, projection.CoursesTable(items), len(items), len(snap.CollegesWithCourses), "courses"); err != nil {
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

func newAddCollegeCmd() *cobra.Command {
	var name, location string
	var courseFlags []string
	cmd := &cobra.Command{
		Use:   "add-college",
		Short: "Register a college, optionally with courses",
		Long: `Register a college. When a college with the same name already exists the
given courses are attached to it instead.`,
		Example: `  catalog add-college --name "Acme Tech" --location "New York" --course Physics=1500.50`,
		Args:    cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			courses, err := parseCourses(courseFlags)
			if err != nil {
				return err
			}
			created, err := a.catalog.CreateCollege(cmd.Context(), name, location, courses)
			if err != nil {
				return commandError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved college %d: %s (%s)\n", created.CollegeID, created.CollegeName, created.Location)
			for _, c := range created.Courses {
				fmt.Fprintf(out, "  + %s  %s\n", c.CourseName, c.Fee)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "College name")
	cmd.Flags().StringVar(&location, "location", "", "College location")
	cmd.Flags().StringArrayVar(&courseFlags, "course", nil, "Course as name=fee (repeatable)")
	return cmd
}

func newAddCourseCmd() *cobra.Command {
	var collegeID int64
	var name, fee string
	cmd := &cobra.Command{
		Use:   "add-course",
		Short: "Add a course to an existing college",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			course, err := a.catalog.AddCourse(cmd.Context(), collegeID, name, models.Fee(fee))
			if err != nil {
				return commandError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added course %d: %s (%s) to college %s\n",
				course.CourseID, course.CourseName, course.Fee, strconv.FormatInt(course.CollegeID, 10))
			return nil
		}),
	}
	cmd.Flags().Int64Var(&collegeID, "college-id", 0, "Identifier of the college")
	cmd.Flags().StringVar(&name, "name", "", "Course name")
	cmd.Flags().StringVar(&fee, "fee", "", "Course fee, e.g. 1500.50")
	return cmd
}
