package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-catalog/internal/dto"
	"github.com/noah-isme/college-catalog/internal/models"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
)

type catalogRepository interface {
	ListColleges(ctx context.Context) ([]models.College, error)
	ListCollegesWithCourses(ctx context.Context) ([]models.CollegeCourseItem, error)
	FindCollegeByID(ctx context.Context, id int64) (*models.College, error)
	UpsertCollegeWithCourses(ctx context.Context, college *models.College, courses []models.Course) error
	CreateCourse(ctx context.Context, course *models.Course) error
}

// CatalogService serves the catalog side of the reference API.
type CatalogService struct {
	repo      catalogRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo catalogRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, validator: validate, logger: logger}
}

// ListColleges returns every college.
func (s *CatalogService) ListColleges(ctx context.Context) ([]models.College, error) {
	colleges, err := s.repo.ListColleges(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to fetch colleges")
	}
	return colleges, nil
}

// ListCollegesWithCourses returns the college and course join.
func (s *CatalogService) ListCollegesWithCourses(ctx context.Context) ([]models.CollegeCourseItem, error) {
	items, err := s.repo.ListCollegesWithCourses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to fetch colleges with courses")
	}
	return items, nil
}

// CreateCollege creates a college, or attaches the courses to the existing college
// with the same name.
func (s *CatalogService) CreateCollege(ctx context.Context, req dto.CreateCollegeRequest) (*models.CreatedCollege, error) {
	req = dto.NewCreateCollegeRequest(req.CollegeName, req.Location, req.Courses)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "College name and location are required")
	}

	college := &models.College{CollegeName: req.CollegeName, Location: req.Location}
	courses := make([]models.Course, 0, len(req.Courses))
	for _, c := range req.Courses {
		courses = append(courses, models.Course{CourseName: c.CourseName, Fee: c.Fee})
	}
	if err := s.repo.UpsertCollegeWithCourses(ctx, college, courses); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to create college")
	}

	created := &models.CreatedCollege{College: *college}
	for _, c := range courses {
		created.Courses = append(created.Courses, models.CourseEcho{CourseName: c.CourseName, Fee: c.Fee})
	}
	s.logger.Info("college saved",
		zap.Int64("college_id", college.CollegeID),
		zap.String("college_name", college.CollegeName),
		zap.Int("courses", len(courses)),
	)
	return created, nil
}

// AddCourse attaches a course to an existing college.
func (s *CatalogService) AddCourse(ctx context.Context, req dto.AddCourseRequest) (*models.Course, error) {
	req = dto.NewAddCourseRequest(req.CollegeID, req.CourseName, req.Fee)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "College, course name and fee are required")
	}

	if _, err := s.repo.FindCollegeByID(ctx, req.CollegeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "College not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to add course to college")
	}

	course := &models.Course{CourseName: strings.TrimSpace(req.CourseName), Fee: req.Fee, CollegeID: req.CollegeID}
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to add course to college")
	}
	return course, nil
}
