package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-catalog/internal/dto"
	"github.com/noah-isme/college-catalog/internal/service"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
	"github.com/noah-isme/college-catalog/pkg/response"
)

// CatalogHandler serves college and course endpoints.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListColleges handles GET /colleges.
func (h *CatalogHandler) ListColleges(c *gin.Context) {
	colleges, err := h.service.ListColleges(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, colleges, "Colleges fetched")
}

// ListCollegesWithCourses handles GET /colleges/courses.
func (h *CatalogHandler) ListCollegesWithCourses(c *gin.Context) {
	items, err := h.service.ListCollegesWithCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, "Colleges with courses fetched")
}

// CreateCollege handles POST /colleges.
func (h *CatalogHandler) CreateCollege(c *gin.Context) {
	var req dto.CreateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	created, err := h.service.CreateCollege(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created, "College saved")
}

// AddCourse handles POST /colleges/courses.
func (h *CatalogHandler) AddCourse(c *gin.Context) {
	var req dto.AddCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.service.AddCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course, "Course added")
}
