package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-catalog/internal/middleware"
	"github.com/noah-isme/college-catalog/internal/service"
)

// RegisterRoutes mounts the catalog API on rg. Catalog endpoints are public;
// favorites require a bearer token.
func RegisterRoutes(rg *gin.RouterGroup, catalog *CatalogHandler, favorites *FavoriteHandler, tokens *service.TokenService) {
	colleges := rg.Group("/colleges")
	colleges.GET("", catalog.ListColleges)
	colleges.POST("", catalog.CreateCollege)
	colleges.GET("/courses", catalog.ListCollegesWithCourses)
	colleges.POST("/courses", catalog.AddCourse)

	favs := rg.Group("/favorites", middleware.JWT(tokens))
	favs.GET("", favorites.List)
	favs.POST("", favorites.Add)
	favs.DELETE("/:collegeId", favorites.Remove)
}
