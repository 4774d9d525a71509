package projection

import (
	"fmt"
	"strconv"
	"time"

	"github.com/noah-isme/college-catalog/internal/models"
	"github.com/noah-isme/college-catalog/pkg/export"
)

// Column headers shared by the CLI listing and the exports.
var (
	CollegeHeaders = []string{"ID", "College", "Location", "Favorite", "Created At"}
	CourseHeaders  = []string{"College ID", "College", "Location", "Course", "Fee"}
)

// CollegesTable builds an export dataset from a colleges listing. isFavorite may be nil.
func CollegesTable(colleges []models.College, isFavorite func(int64) bool) export.Dataset {
	rows := make([]map[string]string, 0, len(colleges))
	for _, c := range colleges {
		favorite := ""
		if isFavorite != nil && isFavorite(c.CollegeID) {
			favorite = "yes"
		}
		rows = append(rows, map[string]string{
			"ID":         strconv.FormatInt(c.CollegeID, 10),
			"College":    c.CollegeName,
			"Location":   c.Location,
			"Favorite":   favorite,
			"Created At": formatTime(c.CreatedAt),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Colleges (%d)", len(colleges)),
		Headers: CollegeHeaders,
		Rows:    rows,
	}
}

// CoursesTable builds an export dataset from the colleges-with-courses listing.
func CoursesTable(items []models.CollegeCourseItem) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]string{
			"College ID": strconv.FormatInt(item.CollegeID, 10),
			"College":    item.CollegeName,
			"Location":   item.Location,
			"Course":     item.Course,
			"Fee":        item.Fee.String(),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Courses (%d)", len(items)),
		Headers: CourseHeaders,
		Rows:    rows,
	}
}

// ShowingLine renders the "Showing N of M" summary above a filtered listing.
func ShowingLine(shown, total int, noun string) string {
	return fmt.Sprintf("Showing %d of %d %s", shown, total, noun)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
