package models

import "time"

// Link represents a shortened URL together with its QR artifact.
type Link struct {
	// LinkID is the unique identifier of the link record.
	LinkID int64
	// OriginalURL is the destination the short code resolves to.
	OriginalURL string
	// ShortenedCode is the unique opaque token appended to the base URL.
	// It never changes after creation.
	ShortenedCode string
	// CompleteShortenedURL is the fully-qualified redirect URL. It is
	// derived from the configured base URL at creation time and stored,
	// so existing links survive a base URL change.
	CompleteShortenedURL string
	// QRCodePath is the storage reference of the rendered QR artifact.
	QRCodePath string
	// CreatedAt is the timestamp when the link was created.
	CreatedAt time.Time
	// ExpiresAt is reserved; it is persisted but not enforced anywhere.
	ExpiresAt *time.Time
	// Clicks is reserved; no code path increments it yet.
	Clicks int64
	// UserID is the owning user. Ownership never changes after creation.
	UserID int64
}
