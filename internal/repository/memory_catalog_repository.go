package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/college-catalog/internal/models"
)

// MemoryCatalogRepository keeps the catalog and favorites in process memory. It
// follows the same contract as the PostgreSQL repositories and backs the reference
// API in development and tests.
type MemoryCatalogRepository struct {
	mu        sync.RWMutex
	colleges  []models.College
	courses   []models.Course
	favorites []models.Favorite
	nextID    int64
	now       func() time.Time
}

// NewMemoryCatalogRepository creates an empty repository.
func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{now: func() time.Time { return time.Now().UTC() }}
}

func (r *MemoryCatalogRepository) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *MemoryCatalogRepository) stamp() *time.Time {
	t := r.now()
	return &t
}

// ListColleges returns every college in creation order.
func (r *MemoryCatalogRepository) ListColleges(_ context.Context) ([]models.College, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.College{}, r.colleges...), nil
}

// ListCollegesWithCourses returns the inner join of colleges and courses.
func (r *MemoryCatalogRepository) ListCollegesWithCourses(_ context.Context) ([]models.CollegeCourseItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := []models.CollegeCourseItem{}
	for _, c := range r.colleges {
		for _, co := range r.courses {
			if co.CollegeID != c.CollegeID {
				continue
			}
			items = append(items, models.CollegeCourseItem{
				CollegeID:   c.CollegeID,
				CollegeName: c.CollegeName,
				Location:    c.Location,
				Course:      co.CourseName,
				Fee:         co.Fee,
			})
		}
	}
	return items, nil
}

// FindCollegeByID returns a college by id or sql.ErrNoRows.
func (r *MemoryCatalogRepository) FindCollegeByID(_ context.Context, id int64) (*models.College, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.colleges {
		if c.CollegeID == id {
			college := c
			return &college, nil
		}
	}
	return nil, sql.ErrNoRows
}

// UpsertCollegeWithCourses creates the college or reuses the one with the same name,
// then attaches courses to it.
func (r *MemoryCatalogRepository) UpsertCollegeWithCourses(_ context.Context, college *models.College, courses []models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for _, c := range r.colleges {
		if c.CollegeName == college.CollegeName {
			*college = c
			found = true
			break
		}
	}
	if !found {
		college.CollegeID = r.id()
		college.CreatedAt = r.stamp()
		r.colleges = append(r.colleges, *college)
	}

	for i := range courses {
		courses[i].CollegeID = college.CollegeID
		courses[i].CourseID = r.id()
		courses[i].CreatedAt = r.stamp()
		r.courses = append(r.courses, courses[i])
	}
	return nil
}

// CreateCourse attaches a course to an existing college.
func (r *MemoryCatalogRepository) CreateCourse(_ context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	course.CourseID = r.id()
	course.CreatedAt = r.stamp()
	r.courses = append(r.courses, *course)
	return nil
}

// ListFavorites returns the user's favorites oldest first.
func (r *MemoryCatalogRepository) ListFavorites(_ context.Context, userID string) ([]models.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Favorite{}
	for _, f := range r.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FavoriteID < out[j].FavoriteID })
	return out, nil
}

// AddFavorite stores the favorite, returning the existing row on repeat.
func (r *MemoryCatalogRepository) AddFavorite(_ context.Context, favorite *models.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.favorites {
		if f.UserID == favorite.UserID && f.CollegeID == favorite.CollegeID {
			*favorite = f
			return nil
		}
	}
	favorite.FavoriteID = r.id()
	favorite.CreatedAt = r.stamp()
	r.favorites = append(r.favorites, *favorite)
	return nil
}

// RemoveFavorite deletes the favorite and reports whether one existed.
func (r *MemoryCatalogRepository) RemoveFavorite(_ context.Context, userID string, collegeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.favorites {
		if f.UserID == userID && f.CollegeID == collegeID {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
