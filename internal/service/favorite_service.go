package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-catalog/internal/dto"
	"github.com/noah-isme/college-catalog/internal/models"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
)

type favoriteRepository interface {
	ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, favorite *models.Favorite) error
	RemoveFavorite(ctx context.Context, userID string, collegeID int64) (bool, error)
}

type collegeLookup interface {
	FindCollegeByID(ctx context.Context, id int64) (*models.College, error)
}

// FavoriteService manages per-user favorites.
type FavoriteService struct {
	repo      favoriteRepository
	colleges  collegeLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(repo favoriteRepository, colleges collegeLookup, validate *validator.Validate, logger *zap.Logger) *FavoriteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoriteService{repo: repo, colleges: colleges, validator: validate, logger: logger}
}

// List returns the user's favorites.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	favorites, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to fetch favorites")
	}
	return favorites, nil
}

// Add marks a college as favorite. Repeating the call returns the existing favorite.
func (s *FavoriteService) Add(ctx context.Context, userID string, req dto.AddFavoriteRequest) (*models.Favorite, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "College is required")
	}
	if _, err := s.colleges.FindCollegeByID(ctx, req.CollegeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "College not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to add favorite")
	}

	favorite := &models.Favorite{UserID: userID, CollegeID: req.CollegeID}
	if err := s.repo.AddFavorite(ctx, favorite); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to add favorite")
	}
	return favorite, nil
}

// Remove unmarks a college.
func (s *FavoriteService) Remove(ctx context.Context, userID string, collegeID int64) error {
	removed, err := s.repo.RemoveFavorite(ctx, userID, collegeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to remove favorite")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "Favorite not found")
	}
	return nil
}
