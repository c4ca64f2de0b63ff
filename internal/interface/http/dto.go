package handlers

import (
	"time"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
)

type signupRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,pwd"`
	FirstName   string  `json:"firstName" binding:"required"`
	LastName    string  `json:"lastName" binding:"required"`
	Username    *string `json:"username"`
	PhoneNumber *string `json:"phoneNumber"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// updateUserRequest uses pointers so "field absent" and "field provided" are
// distinguishable; only provided fields overwrite.
type updateUserRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Username    *string `json:"username"`
	PhoneNumber *string `json:"phoneNumber"`
}

type userResponse struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Username          *string   `json:"username"`
	PhoneNumber       *string   `json:"phoneNumber"`
	ProfilePictureURL *string   `json:"profilePictureUrl"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type authResponse struct {
	Token string       `json:"token"`
	Type  string       `json:"type"`
	User  userResponse `json:"user"`
}

// toUserResponse sanitizes a user record for the wire; the password hash
// never leaves this mapping.
func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Username:          u.Username,
		PhoneNumber:       u.PhoneNumber,
		ProfilePictureURL: u.ProfilePictureURL,
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func toUserResponses(users []*entity.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func newAuthResponse(token string, u *entity.User) authResponse {
	return authResponse{Token: token, Type: "Bearer", User: toUserResponse(u)}
}
