package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-catalog/internal/models"
)

// CatalogRepository persists colleges and courses in PostgreSQL.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new repository instance.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListColleges returns every college in creation order.
func (r *CatalogRepository) ListColleges(ctx context.Context) ([]models.College, error) {
	const query = `SELECT college_id, college_name, location, created_at FROM colleges ORDER BY college_id`
	colleges := []models.College{}
	if err := r.db.SelectContext(ctx, &colleges, query); err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}
	return colleges, nil
}

// ListCollegesWithCourses returns one row per college and course pair. Colleges
// without courses are not listed.
func (r *CatalogRepository) ListCollegesWithCourses(ctx context.Context) ([]models.CollegeCourseItem, error) {
	const query = `SELECT c.college_id, c.college_name, c.location, co.course_name, co.fee FROM colleges c INNER JOIN courses co ON co.college_id = c.college_id ORDER BY c.college_id, co.course_id`
	items := []models.CollegeCourseItem{}
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list colleges with courses: %w", err)
	}
	return items, nil
}

// FindCollegeByID returns a college by id or sql.ErrNoRows.
func (r *CatalogRepository) FindCollegeByID(ctx context.Context, id int64) (*models.College, error) {
	const query = `SELECT college_id, college_name, location, created_at FROM colleges WHERE college_id = $1`
	var college models.College
	if err := r.db.GetContext(ctx, &college, query, id); err != nil {
		return nil, err
	}
	return &college, nil
}

// UpsertCollegeWithCourses creates the college, or reuses the one with the same name,
// and attaches courses to it in one transaction. college is overwritten with the
// stored row; course ids and timestamps are filled in.
func (r *CatalogRepository) UpsertCollegeWithCourses(ctx context.Context, college *models.College, courses []models.Course) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert college: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsert = `INSERT INTO colleges (college_name, location) VALUES ($1, $2) ON CONFLICT (college_name) DO UPDATE SET college_name = EXCLUDED.college_name RETURNING college_id, college_name, location, created_at`
	if err = tx.QueryRowxContext(ctx, upsert, college.CollegeName, college.Location).StructScan(college); err != nil {
		return fmt.Errorf("upsert college: %w", err)
	}

	for i := range courses {
		courses[i].CollegeID = college.CollegeID
		if err = insertCourse(ctx, tx, &courses[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert college: %w", err)
	}
	return nil
}

// CreateCourse attaches a course to an existing college.
func (r *CatalogRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	return insertCourse(ctx, r.db, course)
}

func insertCourse(ctx context.Context, q sqlx.QueryerContext, course *models.Course) error {
	const query = `INSERT INTO courses (course_name, fee, college_id) VALUES ($1, $2, $3) RETURNING course_id, created_at`
	if err := q.QueryRowxContext(ctx, query, course.CourseName, course.Fee, course.CollegeID).Scan(&course.CourseID, &course.CreatedAt); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}
