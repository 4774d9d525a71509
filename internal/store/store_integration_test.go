package store

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-catalog/internal/dto"
	"github.com/noah-isme/college-catalog/internal/handler"
	"github.com/noah-isme/college-catalog/internal/repository"
	"github.com/noah-isme/college-catalog/internal/service"
	"github.com/noah-isme/college-catalog/internal/transport"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
)

func newCatalogAPI(t *testing.T) (string, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryCatalogRepository()
	tokens := service.NewTokenService(service.TokenConfig{Secret: "secret", Expiration: time.Hour})
	r := gin.New()
	handler.RegisterRoutes(r.Group("/api"),
		handler.NewCatalogHandler(service.NewCatalogService(repo, nil, nil)),
		handler.NewFavoriteHandler(service.NewFavoriteService(repo, repo, nil, nil)),
		tokens,
	)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/api", tokens
}

func TestCreateCollegeMergesByNameAgainstAPI(t *testing.T) {
	baseURL, _ := newCatalogAPI(t)
	client := transport.NewClient(baseURL)
	s := NewCatalogStore(transport.NewCatalogTransport(client))
	defer s.Close()
	ctx := context.Background()

	first, err := s.CreateCollege(ctx, "Acme Tech", "NY", []dto.CourseInput{{CourseName: "Physics", Fee: "100"}})
	require.NoError(t, err)
	second, err := s.CreateCollege(ctx, " Acme Tech ", "Elsewhere", []dto.CourseInput{{CourseName: "Chemistry", Fee: "120.50"}})
	require.NoError(t, err)

	assert.Equal(t, first.CollegeID, second.CollegeID)
	assert.Equal(t, "NY", second.Location)
	assert.Equal(t, "Chemistry", second.Courses[0].CourseName)

	s.FetchColleges(ctx)
	s.FetchCollegesWithCourses(ctx)
	snap := s.Snapshot()
	require.Empty(t, snap.Error)
	assert.Len(t, snap.Colleges, 1)
	require.Len(t, snap.CollegesWithCourses, 2)
	assert.Equal(t, "120.50", snap.CollegesWithCourses[1].Fee.String())
}

func TestAddCourseUnknownCollegeAgainstAPI(t *testing.T) {
	baseURL, _ := newCatalogAPI(t)
	s := NewCatalogStore(transport.NewCatalogTransport(transport.NewClient(baseURL)), WithJoinedRefresh(true))
	defer s.Close()

	_, err := s.AddCourse(context.Background(), 99, "CS", "10")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, "College not found", s.Err())
}

func TestJoinedRefreshAgainstAPI(t *testing.T) {
	baseURL, _ := newCatalogAPI(t)
	s := NewCatalogStore(transport.NewCatalogTransport(transport.NewClient(baseURL)), WithJoinedRefresh(true))
	defer s.Close()
	ctx := context.Background()

	created, err := s.CreateCollege(ctx, "Beta Coll", "LA", nil)
	require.NoError(t, err)
	assert.Len(t, s.Colleges(), 1)
	assert.Empty(t, s.CollegesWithCourses())

	_, err = s.AddCourse(ctx, created.CollegeID, "Math", "75")
	require.NoError(t, err)
	require.Len(t, s.CollegesWithCourses(), 1)
	assert.Equal(t, "Math", s.CollegesWithCourses()[0].Course)
}

func TestFavoritesAgainstAPI(t *testing.T) {
	baseURL, tokens := newCatalogAPI(t)
	token, _, err := tokens.Issue("alice")
	require.NoError(t, err)
	client := transport.NewClient(baseURL, transport.WithToken(token))
	catalog := NewCatalogStore(transport.NewCatalogTransport(client))
	favorites := NewFavoritesStore(transport.NewFavoritesTransport(client))
	defer catalog.Close()
	defer favorites.Close()
	ctx := context.Background()

	created, err := catalog.CreateCollege(ctx, "Acme", "NY", nil)
	require.NoError(t, err)

	require.NoError(t, favorites.Toggle(ctx, created.CollegeID))
	favorites.FetchFavorites(ctx)
	assert.Equal(t, []int64{created.CollegeID}, favorites.FavoriteIDs())

	err = favorites.AddFavorite(ctx, 404)
	require.Error(t, err)
	assert.False(t, favorites.IsFavorite(404))

	require.NoError(t, favorites.Toggle(ctx, created.CollegeID))
	favorites.FetchFavorites(ctx)
	assert.Empty(t, favorites.FavoriteIDs())
}

func TestFavoritesWithoutTokenStoresAuthError(t *testing.T) {
	baseURL, _ := newCatalogAPI(t)
	s := NewFavoritesStore(transport.NewFavoritesTransport(transport.NewClient(baseURL)))
	defer s.Close()

	s.FetchFavorites(context.Background())
	assert.NotEmpty(t, s.Err())

	err := s.AddFavorite(context.Background(), 1)
	assert.True(t, appErrors.IsAuth(err))
	assert.False(t, s.IsFavorite(1))
}
