// Package http provides the HTTP delivery layer for the link shortening
// service. It contains the routes, handlers and related types used for
// processing incoming requests, validating input, and formatting responses.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/qrlinkki/qrlinkki/internal/models"
	"github.com/qrlinkki/qrlinkki/pkg/response"
	httpSwagger "github.com/swaggo/http-swagger"
)

// LinkService defines the interface for the core link shortening business logic.
type LinkService interface {
	// Shorten creates a shortened link owned by the given user, rendering
	// its QR artifact along the way.
	Shorten(ctx context.Context, userID int64, originalURL string, expiresAt *time.Time) (*models.Link, error)

	// Resolve retrieves the link for a given shortened code.
	Resolve(ctx context.Context, code string) (*models.Link, error)

	// LinksOfUser retrieves every link owned by the given user.
	LinksOfUser(ctx context.Context, userID int64) ([]models.Link, error)

	// LinkWithQR retrieves a link together with its QR artifact inlined as
	// a base64 string.
	LinkWithQR(ctx context.Context, code string) (*models.Link, string, error)

	// Update replaces the original URL and expiry of a link and regenerates
	// its QR artifact.
	Update(ctx context.Context, code, originalURL string, expiresAt *time.Time) (*models.Link, error)

	// Delete removes a link and its QR artifact. It reports whether a link
	// was actually removed.
	Delete(ctx context.Context, code string) (bool, error)
}

// UserService defines the interface for registration, authentication and
// account management.
type UserService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, email, password string) (*models.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

func getValidate() *validator.Validate {
	validate := validator.New()
	response.RegisterTagName(validate)

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, linkSvc LinkService, userSvc UserService, tokens TokenParser) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealthz)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Get("/r/{code}", handleRedirect(linkSvc))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		validate := getValidate()

		r.Post("/users", handleRegisterUser(userSvc, validate))
		r.Post("/auth", handleAuthenticate(userSvc, validate))

		r.Group(func(r chi.Router) {
			r.Use(authenticate(tokens))

			r.Get("/auth/me", handleCurrentUser(userSvc))

			r.Route("/users/me", func(r chi.Router) {
				r.Put("/", handleUpdateUser(userSvc, validate))
				r.Delete("/", handleDeleteUser(userSvc))
			})

			r.Route("/links", func(r chi.Router) {
				r.Post("/", handleCreateLink(linkSvc, validate))
				r.Get("/", handleListLinks(linkSvc))

				r.Route("/{code}", func(r chi.Router) {
					r.Get("/", handleGetLink(linkSvc))
					r.Put("/", handleUpdateLink(linkSvc, validate))
					r.Delete("/", handleDeleteLink(linkSvc))
				})
			})
		})
	})

	return r
}
