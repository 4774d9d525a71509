package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/noah-isme/college-catalog/internal/dto"
	"github.com/noah-isme/college-catalog/internal/models"
)

var (
	opListFavorites  = operation{name: "list_favorites", fallback: "Failed to fetch favorites"}
	opAddFavorite    = operation{name: "add_favorite", fallback: "Failed to add favorite"}
	opRemoveFavorite = operation{name: "remove_favorite", fallback: "Failed to remove favorite"}
)

// FavoritesTransport issues the current user's favorite operations.
type FavoritesTransport struct {
	client *Client
}

// NewFavoritesTransport constructs a FavoritesTransport.
func NewFavoritesTransport(client *Client) *FavoritesTransport {
	return &FavoritesTransport{client: client}
}

// ListFavorites returns the current user's favorites.
func (t *FavoritesTransport) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	favorites, err := call[[]models.Favorite](ctx, t.client, opListFavorites, http.MethodGet, "/favorites", nil)
	if err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []models.Favorite{}
	}
	return favorites, nil
}

// AddFavorite marks a college as favorite.
func (t *FavoritesTransport) AddFavorite(ctx context.Context, collegeID int64) (*models.Favorite, error) {
	fav, err := call[models.Favorite](ctx, t.client, opAddFavorite, http.MethodPost, "/favorites", dto.AddFavoriteRequest{CollegeID: collegeID})
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

// RemoveFavorite unmarks a college.
func (t *FavoritesTransport) RemoveFavorite(ctx context.Context, collegeID int64) error {
	_, err := call[json.RawMessage](ctx, t.client, opRemoveFavorite, http.MethodDelete, fmt.Sprintf("/favorites/%d", collegeID), nil)
	return err
}
