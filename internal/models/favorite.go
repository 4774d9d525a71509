package models

import "time"

// Favorite links the current user to a college.
type Favorite struct {
	FavoriteID int64      `db:"favorite_id" json:"favoriteId"`
	UserID     string     `db:"user_id" json:"-"`
	CollegeID  int64      `db:"college_id" json:"collegeId"`
	CreatedAt  *time.Time `db:"created_at" json:"createdAt,omitempty"`
}
