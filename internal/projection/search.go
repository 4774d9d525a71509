// Package projection derives read-only views from store snapshots. Nothing here
// fetches or mutates store state.
package projection

import (
	"strings"

	"github.com/noah-isme/college-catalog/internal/models"
)

// FilterColleges keeps colleges whose name or location contains term, ignoring case.
// An empty term keeps every college. Whitespace in term is matched literally. The result
// is a new slice in input order.
func FilterColleges(colleges []models.College, term string) []models.College {
	needle := normalize(term)
	out := make([]models.College, 0, len(colleges))
	for _, c := range colleges {
		if needle == "" || matches(needle, c.CollegeName, c.Location) {
			out = append(out, c)
		}
	}
	return out
}

// FilterCourses keeps rows whose course name, college name or location contains term.
func FilterCourses(items []models.CollegeCourseItem, term string) []models.CollegeCourseItem {
	needle := normalize(term)
	out := make([]models.CollegeCourseItem, 0, len(items))
	for _, item := range items {
		if needle == "" || matches(needle, item.Course, item.CollegeName, item.Location) {
			out = append(out, item)
		}
	}
	return out
}

// FavoriteSet builds a membership set from favorite college ids.
func FavoriteSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// FavoriteColleges keeps the colleges isFavorite accepts, in input order.
func FavoriteColleges(colleges []models.College, isFavorite func(int64) bool) []models.College {
	out := make([]models.College, 0)
	for _, c := range colleges {
		if isFavorite(c.CollegeID) {
			out = append(out, c)
		}
	}
	return out
}

func normalize(term string) string {
	return strings.ToLower(term)
}

func matches(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
