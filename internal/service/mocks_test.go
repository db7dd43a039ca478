package service

import (
	"context"
	"time"

	"github.com/qrlinkki/qrlinkki/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockLinkRepository struct {
	mock.Mock
}

func (r *MockLinkRepository) Create(ctx context.Context, link *models.Link) (*models.Link, error) {
	args := r.Called(ctx, link)
	created, _ := args.Get(0).(*models.Link)
	return created, args.Error(1)
}

func (r *MockLinkRepository) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	args := r.Called(ctx, code)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Link, error) {
	args := r.Called(ctx, userID)
	links, _ := args.Get(0).([]models.Link)
	return links, args.Error(1)
}

func (r *MockLinkRepository) Update(ctx context.Context, code, originalURL, completeURL, qrPath string, expiresAt *time.Time) (*models.Link, error) {
	args := r.Called(ctx, code, originalURL, completeURL, qrPath, expiresAt)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) Delete(ctx context.Context, code string) (bool, error) {
	args := r.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type MockQRProducer struct {
	mock.Mock
}

func (p *MockQRProducer) Generate(url, code string) (string, error) {
	args := p.Called(url, code)
	return args.String(0), args.Error(1)
}

func (p *MockQRProducer) Inline(path string) (string, error) {
	args := p.Called(path)
	return args.String(0), args.Error(1)
}

func (p *MockQRProducer) Remove(path string) error {
	args := p.Called(path)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (r *MockUserRepository) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	args := r.Called(ctx, email, passwordHash)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (r *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := r.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (r *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := r.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (r *MockUserRepository) Update(ctx context.Context, id int64, email, passwordHash string) (*models.User, error) {
	args := r.Called(ctx, id, email, passwordHash)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (r *MockUserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := r.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID int64) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
