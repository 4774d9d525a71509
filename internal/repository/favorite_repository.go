package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-catalog/internal/models"
)

// FavoriteRepository persists per-user favorites in PostgreSQL.
type FavoriteRepository struct {
	db *sqlx.DB
}

// NewFavoriteRepository creates a new repository instance.
func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// ListFavorites returns the user's favorites oldest first.
func (r *FavoriteRepository) ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	const query = `SELECT favorite_id, user_id, college_id, created_at FROM favorites WHERE user_id = $1 ORDER BY favorite_id`
	favorites := []models.Favorite{}
	if err := r.db.SelectContext(ctx, &favorites, query, userID); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favorites, nil
}

// AddFavorite stores the favorite, returning the existing row when the user already
// marked the college.
func (r *FavoriteRepository) AddFavorite(ctx context.Context, favorite *models.Favorite) error {
	const query = `INSERT INTO favorites (user_id, college_id) VALUES ($1, $2) ON CONFLICT (user_id, college_id) DO UPDATE SET user_id = EXCLUDED.user_id RETURNING favorite_id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, favorite.UserID, favorite.CollegeID).Scan(&favorite.FavoriteID, &favorite.CreatedAt); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes the favorite and reports whether one existed.
func (r *FavoriteRepository) RemoveFavorite(ctx context.Context, userID string, collegeID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND college_id = $2`, userID, collegeID)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove favorite rows: %w", err)
	}
	return n > 0, nil
}
