package transport

import (
	"context"
	"net/http"

	"github.com/noah-isme/college-catalog/internal/dto"
	"github.com/noah-isme/college-catalog/internal/models"
)

var (
	opListColleges            = operation{name: "list_colleges", fallback: "Failed to fetch colleges"}
	opListCollegesWithCourses = operation{name: "list_colleges_with_courses", fallback: "Failed to fetch colleges with courses"}
	opCreateCollege           = operation{name: "create_college", fallback: "Failed to create college"}
	opAddCourse               = operation{name: "add_course", fallback: "Failed to add course to college"}
)

// CatalogTransport issues the four catalog operations.
type CatalogTransport struct {
	client *Client
}

// NewCatalogTransport constructs a CatalogTransport.
func NewCatalogTransport(client *Client) *CatalogTransport {
	return &CatalogTransport{client: client}
}

// ListColleges returns every college without courses.
func (t *CatalogTransport) ListColleges(ctx context.Context) ([]models.College, error) {
	colleges, err := call[[]models.College](ctx, t.client, opListColleges, http.MethodGet, "/colleges", nil)
	if err != nil {
		return nil, err
	}
	if colleges == nil {
		colleges = []models.College{}
	}
	return colleges, nil
}

// ListCollegesWithCourses returns one row per college/course pair. Colleges without
// courses are absent.
func (t *CatalogTransport) ListCollegesWithCourses(ctx context.Context) ([]models.CollegeCourseItem, error) {
	items, err := call[[]models.CollegeCourseItem](ctx, t.client, opListCollegesWithCourses, http.MethodGet, "/colleges/courses", nil)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CollegeCourseItem{}
	}
	return items, nil
}

// CreateCollege creates a college, or attaches the courses to the existing college
// with the same name.
func (t *CatalogTransport) CreateCollege(ctx context.Context, req dto.CreateCollegeRequest) (*models.CreatedCollege, error) {
	created, err := call[models.CreatedCollege](ctx, t.client, opCreateCollege, http.MethodPost, "/colleges", req)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// AddCourse attaches a course to an existing college.
func (t *CatalogTransport) AddCourse(ctx context.Context, req dto.AddCourseRequest) (*models.Course, error) {
	course, err := call[models.Course](ctx, t.client, opAddCourse, http.MethodPost, "/colleges/courses", req)
	if err != nil {
		return nil, err
	}
	return &course, nil
}
