package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash and must never be serialized outward.
// Optional columns use pointers so "absent" survives the round trip to
// Postgres as NULL (NULL usernames do not collide on the unique
// constraint).
type User struct {
	ID                   int64
	Email                string
	Password             string `json:"-"`
	FirstName            string
	LastName             string
	Username             *string
	PhoneNumber          *string
	ProfilePictureURL    *string
	ProfilePictureFileID *string
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasProfilePicture reports whether an external image is attached.
// URL and file id are set and cleared together.
func (u *User) HasProfilePicture() bool {
	return u.ProfilePictureFileID != nil && *u.ProfilePictureFileID != ""
}
