package service

import (
	"context"
	"testing"
	"time"

	"github.com/qrlinkki/qrlinkki/internal/database"
	"github.com/qrlinkki/qrlinkki/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	testBaseURL    = "http://localhost:8080"
	testCodeLength = 7
)

func setupLinkService(t testing.TB) (*LinkService, *MockLinkRepository, *MockQRProducer) {
	t.Helper()

	repo := new(MockLinkRepository)
	qr := new(MockQRProducer)
	svc := NewLinkService(repo, qr, testBaseURL, testCodeLength)

	return svc, repo, qr
}

func TestLinkService_Shorten(t *testing.T) {
	t.Run("qr generation fails", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		qr.On("Generate", "https://example.com", mock.AnythingOfType("string")).
			Return("", assert.AnError).Once()

		link, err := svc.Shorten(context.TODO(), 1, "https://example.com", nil)

		assert.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, link)
		repo.AssertNotCalled(t, "Create")
		qr.AssertExpectations(t)
	})

	t.Run("collision retries with a wider code", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		var codes []string
		qr.On("Generate", "https://example.com", mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) {
				codes = append(codes, args.String(1))
			}).
			Return("qr/path.png", nil).Twice()
		qr.On("Remove", "qr/path.png").Return(nil).Once()

		repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Link")).
			Return(nil, database.ErrShortCodeExists).Once()
		repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Link")).
			Return(&models.Link{LinkID: 1, ShortenedCode: "abcd1234"}, nil).Once()

		link, err := svc.Shorten(context.TODO(), 1, "https://example.com", nil)

		assert.NoError(t, err)
		assert.NotNil(t, link)
		assert.Len(t, codes, 2)
		assert.Len(t, codes[0], testCodeLength)
		assert.Len(t, codes[1], testCodeLength+1)
		repo.AssertExpectations(t)
		qr.AssertExpectations(t)
	})

	t.Run("max retries exceeded", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		qr.On("Generate", "https://example.com", mock.AnythingOfType("string")).
			Return("qr/path.png", nil).Times(5)
		qr.On("Remove", "qr/path.png").Return(nil).Times(5)

		repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Link")).
			Return(nil, database.ErrShortCodeExists).Times(5)

		link, err := svc.Shorten(context.TODO(), 1, "https://example.com", nil)

		assert.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
		assert.Nil(t, link)
		repo.AssertExpectations(t)
		qr.AssertExpectations(t)
	})

	t.Run("insert failure removes the orphan artifact", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		qr.On("Generate", "https://example.com", mock.AnythingOfType("string")).
			Return("qr/path.png", nil).Once()
		qr.On("Remove", "qr/path.png").Return(nil).Once()

		repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Link")).
			Return(nil, assert.AnError).Once()

		link, err := svc.Shorten(context.TODO(), 1, "https://example.com", nil)

		assert.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, link)
		repo.AssertExpectations(t)
		qr.AssertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		qr.On("Generate", "https://example.com", mock.AnythingOfType("string")).
			Return("qr/path.png", nil).Once()

		repo.On("Create", mock.Anything, mock.MatchedBy(func(link *models.Link) bool {
			return link.UserID == 1 &&
				link.OriginalURL == "https://example.com" &&
				link.QRCodePath == "qr/path.png" &&
				link.CompleteShortenedURL == testBaseURL+"/r/"+link.ShortenedCode
		})).Return(&models.Link{LinkID: 1}, nil).Once()

		link, err := svc.Shorten(context.TODO(), 1, "https://example.com", nil)

		assert.NoError(t, err)
		assert.NotNil(t, link)
		repo.AssertExpectations(t)
		qr.AssertExpectations(t)
	})
}

func TestLinkService_Resolve(t *testing.T) {
	t.Run("link not found", func(t *testing.T) {
		svc, repo, _ := setupLinkService(t)

		repo.On("GetByCode", mock.Anything, "missing").
			Return(nil, database.ErrLinkNotFound).Once()

		link, err := svc.Resolve(context.TODO(), "missing")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrLinkNotFound)
		assert.Nil(t, link)
		repo.AssertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		svc, repo, _ := setupLinkService(t)

		repo.On("GetByCode", mock.Anything, "abc123").
			Return(&models.Link{LinkID: 1, OriginalURL: "https://example.com"}, nil).Once()

		link, err := svc.Resolve(context.TODO(), "abc123")

		assert.NoError(t, err)
		assert.NotNil(t, link)
		assert.Equal(t, "https://example.com", link.OriginalURL)
		repo.AssertExpectations(t)
	})
}

func TestLinkService_LinksOfUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, repo, _ := setupLinkService(t)

		repo.On("GetByUserID", mock.Anything, int64(1)).
			Return([]models.Link{{LinkID: 1}, {LinkID: 2}}, nil).Once()

		links, err := svc.LinksOfUser(context.TODO(), 1)

		assert.NoError(t, err)
		assert.Len(t, links, 2)
		repo.AssertExpectations(t)
	})
}

func TestLinkService_LinkWithQR(t *testing.T) {
	t.Run("artifact unreadable", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		repo.On("GetByCode", mock.Anything, "abc123").
			Return(&models.Link{LinkID: 1, QRCodePath: "qr/path.png"}, nil).Once()
		qr.On("Inline", "qr/path.png").Return("", assert.AnError).Once()

		link, data, err := svc.LinkWithQR(context.TODO(), "abc123")

		assert.Error(t, err)
		assert.Nil(t, link)
		assert.Empty(t, data)
		repo.AssertExpectations(t)
		qr.AssertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		repo.On("GetByCode", mock.Anything, "abc123").
			Return(&models.Link{LinkID: 1, QRCodePath: "qr/path.png"}, nil).Once()
		qr.On("Inline", "qr/path.png").Return("aGVsbG8=", nil).Once()

		link, data, err := svc.LinkWithQR(context.TODO(), "abc123")

		assert.NoError(t, err)
		assert.NotNil(t, link)
		assert.Equal(t, "aGVsbG8=", data)
		repo.AssertExpectations(t)
		qr.AssertExpectations(t)
	})
}

func TestLinkService_Update(t *testing.T) {
	t.Run("link not found", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		qr.On("Generate", "https://new.example.com", "abc123").
			Return("qr/path.png", nil).Once()
		repo.On("Update", mock.Anything, "abc123", "https://new.example.com",
			testBaseURL+"/r/abc123", "qr/path.png", (*time.Time)(nil)).
			Return(nil, database.ErrLinkNotFound).Once()

		link, err := svc.Update(context.TODO(), "abc123", "https://new.example.com", nil)

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrLinkNotFound)
		assert.Nil(t, link)
		repo.AssertExpectations(t)
		qr.AssertExpectations(t)
	})

	t.Run("regenerates the artifact for the new url", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		qr.On("Generate", "https://new.example.com", "abc123").
			Return("qr/path.png", nil).Once()
		repo.On("Update", mock.Anything, "abc123", "https://new.example.com",
			testBaseURL+"/r/abc123", "qr/path.png", (*time.Time)(nil)).
			Return(&models.Link{LinkID: 1, OriginalURL: "https://new.example.com"}, nil).Once()

		link, err := svc.Update(context.TODO(), "abc123", "https://new.example.com", nil)

		assert.NoError(t, err)
		assert.NotNil(t, link)
		assert.Equal(t, "https://new.example.com", link.OriginalURL)
		repo.AssertExpectations(t)
		qr.AssertExpectations(t)
	})
}

func TestLinkService_Delete(t *testing.T) {
	t.Run("link not found", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		repo.On("GetByCode", mock.Anything, "missing").
			Return(nil, database.ErrLinkNotFound).Once()

		removed, err := svc.Delete(context.TODO(), "missing")

		assert.NoError(t, err)
		assert.False(t, removed)
		repo.AssertNotCalled(t, "Delete")
		qr.AssertNotCalled(t, "Remove")
		repo.AssertExpectations(t)
	})

	t.Run("success removes the artifact", func(t *testing.T) {
		svc, repo, qr := setupLinkService(t)

		repo.On("GetByCode", mock.Anything, "abc123").
			Return(&models.Link{LinkID: 1, QRCodePath: "qr/path.png"}, nil).Once()
		repo.On("Delete", mock.Anything, "abc123").Return(true, nil).Once()
		qr.On("Remove", "qr/path.png").Return(nil).Once()

		removed, err := svc.Delete(context.TODO(), "abc123")

		assert.NoError(t, err)
		assert.True(t, removed)
		repo.AssertExpectations(t)
		qr.AssertExpectations(t)
	})
}
