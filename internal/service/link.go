package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qrlinkki/qrlinkki/internal/database"
	"github.com/qrlinkki/qrlinkki/internal/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrMaxRetriesExceeded is returned when the maximum number of retries for generating a shortened code is exceeded.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating shortened code")

// LinkRepository defines the interface for working with links at the business logic layer.
type LinkRepository interface {
	// Create inserts a new link.
	// Returns the created link model or an error if the operation fails.
	Create(ctx context.Context, link *models.Link) (*models.Link, error)

	// GetByCode retrieves a link by its shortened code.
	// Returns the link model if found or an error if not found.
	GetByCode(ctx context.Context, code string) (*models.Link, error)

	// GetByUserID retrieves every link owned by the given user.
	GetByUserID(ctx context.Context, userID int64) ([]models.Link, error)

	// Update modifies the mutable fields of the link with the given code.
	// Returns the updated link model or an error if the operation fails.
	Update(ctx context.Context, code, originalURL, completeURL, qrPath string, expiresAt *time.Time) (*models.Link, error)

	// Delete removes a link by its shortened code and reports whether a row
	// was removed.
	Delete(ctx context.Context, code string) (bool, error)
}

// QRProducer defines the interface for rendering and managing QR artifacts.
type QRProducer interface {
	// Generate renders a QR image encoding url under the given code and
	// returns the stored artifact path.
	Generate(url, code string) (string, error)

	// Inline reads a stored artifact back as a base64 string.
	Inline(path string) (string, error)

	// Remove deletes a stored artifact. A missing artifact is not an error.
	Remove(path string) error
}

// LinkService provides methods to manage link shortening operations.
// Every link carries a QR artifact encoding its original URL; the artifact
// is rendered before the database insert so that a stored row always has a
// readable artifact behind it.
type LinkService struct {
	repo       LinkRepository
	qr         QRProducer
	baseURL    string
	codeLength int
}

func NewLinkService(repo LinkRepository, qr QRProducer, baseURL string, codeLength int) *LinkService {
	return &LinkService{
		repo:       repo,
		qr:         qr,
		baseURL:    baseURL,
		codeLength: codeLength,
	}
}

func (s *LinkService) completeURL(code string) string {
	return s.baseURL + "/r/" + code
}

// Shorten generates a shortened code for the provided original URL, renders
// its QR artifact and stores the link. It attempts to generate a unique code
// up to a maximum number of retries, widening the code by one character on
// each collision. The unique constraint on the code column is the collision
// arbiter; a losing insert cleans up its orphan artifact and retries.
func (s *LinkService) Shorten(ctx context.Context, userID int64, originalURL string, expiresAt *time.Time) (*models.Link, error) {
	const op = "service.LinkService.Shorten"
	const maxRetries = 5

	length := s.codeLength

	for i := 0; i < maxRetries; i++ {
		code, err := gonanoid.New(length)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate shortened code: %w", op, err)
		}

		qrPath, err := s.qr.Generate(originalURL, code)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		link, err := s.repo.Create(ctx, &models.Link{
			OriginalURL:          originalURL,
			ShortenedCode:        code,
			CompleteShortenedURL: s.completeURL(code),
			QRCodePath:           qrPath,
			ExpiresAt:            expiresAt,
			UserID:               userID,
		})
		if err != nil {
			_ = s.qr.Remove(qrPath)

			if errors.Is(err, database.ErrShortCodeExists) {
				length++
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return link, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// Resolve retrieves the link associated with the provided shortened code.
func (s *LinkService) Resolve(ctx context.Context, code string) (*models.Link, error) {
	const op = "service.LinkService.Resolve"

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve shortened code: %w", op, err)
	}

	return link, nil
}

// LinksOfUser retrieves every link owned by the given user.
func (s *LinkService) LinksOfUser(ctx context.Context, userID int64) ([]models.Link, error) {
	const op = "service.LinkService.LinksOfUser"

	links, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	return links, nil
}

// LinkWithQR retrieves a link together with its QR artifact inlined as a
// base64 string.
func (s *LinkService) LinkWithQR(ctx context.Context, code string) (*models.Link, string, error) {
	const op = "service.LinkService.LinkWithQR"

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%s: failed to resolve shortened code: %w", op, err)
	}

	data, err := s.qr.Inline(link.QRCodePath)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return link, data, nil
}

// Update replaces the original URL and expiry of the link with the given
// code. The QR artifact is regenerated unconditionally so that it always
// encodes the current original URL.
func (s *LinkService) Update(ctx context.Context, code, originalURL string, expiresAt *time.Time) (*models.Link, error) {
	const op = "service.LinkService.Update"

	qrPath, err := s.qr.Generate(originalURL, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	link, err := s.repo.Update(ctx, code, originalURL, s.completeURL(code), qrPath, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to update link: %w", op, err)
	}

	return link, nil
}

// Delete removes the link with the given code along with its QR artifact.
// It reports whether a link was actually removed.
func (s *LinkService) Delete(ctx context.Context, code string) (bool, error) {
	const op = "service.LinkService.Delete"

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, database.ErrLinkNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("%s: failed to resolve shortened code: %w", op, err)
	}

	removed, err := s.repo.Delete(ctx, code)
	if err != nil {
		return false, fmt.Errorf("%s: failed to delete link: %w", op, err)
	}

	if removed {
		_ = s.qr.Remove(link.QRCodePath)
	}

	return removed, nil
}
