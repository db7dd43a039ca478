package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/qrlinkki/qrlinkki/internal/database"
	"github.com/qrlinkki/qrlinkki/internal/models"
	"github.com/qrlinkki/qrlinkki/internal/service"
	"github.com/qrlinkki/qrlinkki/pkg/response"
)

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// decodeRequest decodes and validates a JSON request body, writing the
// appropriate error response itself. It reports whether the handler should
// proceed.
func decodeRequest(w http.ResponseWriter, r *http.Request, validate *validator.Validate, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return false
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequestResponse)
		return false
	}

	if err := validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return false
	}

	return true
}

// requireOwnLink resolves a link and checks that the caller owns it. The
// existence check runs first, so a foreign code yields 404 only when the
// link is genuinely absent and 403 when it belongs to someone else.
func requireOwnLink(w http.ResponseWriter, r *http.Request, svc LinkService, code, op string) (*models.Link, bool) {
	link, err := svc.Resolve(r.Context(), code)
	if err != nil {
		if errors.Is(err, database.ErrLinkNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.ResourceNotFoundResponse)
			return nil, false
		}

		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerErrorResponse)
		return nil, false
	}

	if link.UserID != callerID(r) {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.ForbiddenResponse)
		return nil, false
	}

	return link, true
}

func handleRedirect(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		link, err := svc.Resolve(r.Context(), code)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, link.OriginalURL, http.StatusFound)
	}
}

func handleCreateLink(svc LinkService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleCreateLink"
	const successMsg = "The link has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req linkRequest
		if !decodeRequest(w, r, validate, &req) {
			return
		}

		link, err := svc.Shorten(r.Context(), callerID(r), req.OriginalURL, req.ExpiresAt)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(link)))
	}
}

func handleListLinks(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleListLinks"
	const successMsg = "The links were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		links, err := svc.LinksOfUser(r.Context(), callerID(r))
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := make([]linkResponse, 0, len(links))
		for i := range links {
			data = append(data, toLinkResponse(&links[i]))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

func handleGetLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleGetLink"
	const successMsg = "The link was retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		if _, ok := requireOwnLink(w, r, svc, code, op); !ok {
			return
		}

		link, qrData, err := svc.LinkWithQR(r.Context(), code)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := toLinkResponse(link)
		data.QRCodeBase64 = qrData

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

func handleUpdateLink(svc LinkService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleUpdateLink"
	const successMsg = "The link was updated successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req linkRequest
		if !decodeRequest(w, r, validate, &req) {
			return
		}

		code := chi.URLParam(r, "code")

		if _, ok := requireOwnLink(w, r, svc, code, op); !ok {
			return
		}

		link, err := svc.Update(r.Context(), code, req.OriginalURL, req.ExpiresAt)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(link)))
	}
}

func handleDeleteLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleDeleteLink"

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		if _, ok := requireOwnLink(w, r, svc, code, op); !ok {
			return
		}

		removed, err := svc.Delete(r.Context(), code)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		if !removed {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.ResourceNotFoundResponse)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRegisterUser(svc UserService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleRegisterUser"
	const successMsg = "The user has been registered successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req userRequest
		if !decodeRequest(w, r, validate, &req) {
			return
		}

		user, err := svc.Register(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, database.ErrEmailExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.EmailExistsResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toUserResponse(user)))
	}
}

func handleAuthenticate(svc UserService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleAuthenticate"
	const successMsg = "Authentication successful."

	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if !decodeRequest(w, r, validate, &req) {
			return
		}

		token, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.InvalidCredentialsResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, tokenResponse{Token: token}))
	}
}

func handleCurrentUser(svc UserService) http.HandlerFunc {
	const op = "api.http.handleCurrentUser"
	const successMsg = "The account was retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Get(r.Context(), callerID(r))
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toUserResponse(user)))
	}
}

func handleUpdateUser(svc UserService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleUpdateUser"
	const successMsg = "The account was updated successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req userUpdateRequest
		if !decodeRequest(w, r, validate, &req) {
			return
		}

		user, err := svc.Update(r.Context(), callerID(r), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrUserNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
			case errors.Is(err, database.ErrEmailExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.EmailExistsResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toUserResponse(user)))
	}
}

func handleDeleteUser(svc UserService) http.HandlerFunc {
	const op = "api.http.handleDeleteUser"

	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := svc.Delete(r.Context(), callerID(r))
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		if !removed {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.ResourceNotFoundResponse)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
