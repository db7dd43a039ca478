package http

import (
	"time"

	"github.com/qrlinkki/qrlinkki/internal/models"
)

// linkRequest represents the structure for a request to shorten or modify a link.
type linkRequest struct {
	OriginalURL string     `json:"original_url" validate:"required,url,max=2048"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// linkResponse represents the structure for a response containing link information.
type linkResponse struct {
	LinkID               int64      `json:"link_id"`
	OriginalURL          string     `json:"original_url"`
	ShortenedCode        string     `json:"shortened_code"`
	CompleteShortenedURL string     `json:"complete_shortened_url"`
	QRCodeBase64         string     `json:"qr_code_base64,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	ExpiresAt            *time.Time `json:"expires_at,omitempty"`
	Clicks               int64      `json:"clicks"`
	UserID               int64      `json:"user_id"`
}

func toLinkResponse(link *models.Link) linkResponse {
	return linkResponse{
		LinkID:               link.LinkID,
		OriginalURL:          link.OriginalURL,
		ShortenedCode:        link.ShortenedCode,
		CompleteShortenedURL: link.CompleteShortenedURL,
		CreatedAt:            link.CreatedAt,
		ExpiresAt:            link.ExpiresAt,
		Clicks:               link.Clicks,
		UserID:               link.UserID,
	}
}

// userRequest represents the structure for a registration request. On
// updates an empty password keeps the current one.
type userRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// userUpdateRequest allows changing the email while leaving the password
// untouched.
type userUpdateRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// credentialsRequest represents the structure for an authentication request.
type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// userResponse represents the structure for a response containing account
// information. The password hash never leaves the service.
type userResponse struct {
	UserID    int64      `json:"user_id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		UserID:    user.UserID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// tokenResponse carries a freshly issued bearer token.
type tokenResponse struct {
	Token string `json:"token"`
}
