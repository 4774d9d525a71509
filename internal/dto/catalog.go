package dto

import (
	"strings"

	"github.com/noah-isme/college-catalog/internal/models"
)

// CourseInput is one course row of the create-college form.
type CourseInput struct {
	CourseName string     `json:"courseName" validate:"required,max=255"`
	Fee        models.Fee `json:"fee" validate:"required,max=32"`
}

// CreateCollegeRequest is the POST /colleges payload. A nil Courses slice is omitted
// from the body entirely.
type CreateCollegeRequest struct {
	CollegeName string        `json:"collegeName" validate:"required,max=255"`
	Location    string        `json:"location" validate:"required,max=255"`
	Courses     []CourseInput `json:"courses,omitempty" validate:"omitempty,dive"`
}

// AddCourseRequest is the POST /colleges/courses payload.
type AddCourseRequest struct {
	CollegeID  int64      `json:"collegeId" validate:"required,gt=0"`
	CourseName string     `json:"courseName" validate:"required,max=255"`
	Fee        models.Fee `json:"fee" validate:"required,max=32"`
}

// AddFavoriteRequest is the POST /favorites payload.
type AddFavoriteRequest struct {
	CollegeID int64 `json:"collegeId" validate:"required,gt=0"`
}

// NewCreateCollegeRequest trims the form fields and keeps only complete course rows.
func NewCreateCollegeRequest(name, location string, courses []CourseInput) CreateCollegeRequest {
	return CreateCollegeRequest{
		CollegeName: strings.TrimSpace(name),
		Location:    strings.TrimSpace(location),
		Courses:     CompleteCourses(courses),
	}
}

// NewAddCourseRequest trims the course name and fee.
func NewAddCourseRequest(collegeID int64, courseName string, fee models.Fee) AddCourseRequest {
	return AddCourseRequest{
		CollegeID:  collegeID,
		CourseName: strings.TrimSpace(courseName),
		Fee:        models.FeeFromString(string(fee)),
	}
}

// CompleteCourses drops rows missing a name or fee. It returns nil, never an empty
// slice, when no row survives.
func CompleteCourses(courses []CourseInput) []CourseInput {
	var out []CourseInput
	for _, c := range courses {
		name := strings.TrimSpace(c.CourseName)
		fee := models.FeeFromString(string(c.Fee))
		if name == "" || fee.IsZero() {
			continue
		}
		out = append(out, CourseInput{CourseName: name, Fee: fee})
	}
	return out
}
