package routehandlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coreybb/starwars-api/datastore"
	"github.com/coreybb/starwars-api/models"
	"github.com/coreybb/starwars-api/webutil"
	"github.com/go-chi/chi/v5"
)

const (
	msgUsersNotFound   = "Cannot find users"
	msgUserNotFound    = "Cannot find user"
	msgDeleteNotFound  = "User not found"
	msgDuplicateEmail  = "Email already registered"
	paramUserID        = "id"
	userResourcePrefix = "/user/"
)

// UserStore is the persistence the user handlers need.
// *datastore.UserRepository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID int64) error
}

type UserHandler struct {
	Repo UserStore
}

func NewUserHandler(repo UserStore) *UserHandler {
	return &UserHandler{Repo: repo}
}

// HandleGetUsers lists every user. An empty table is reported as 404.
func (h *UserHandler) HandleGetUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := h.Repo.GetUsers(r.Context())
	if err != nil {
		return webutil.ErrInternalServerWrap("failed to retrieve users", err)
	}
	if len(users) == 0 {
		return webutil.ErrNotFound(msgUsersNotFound)
	}

	serialized := make([]map[string]any, 0, len(users))
	for _, u := range users {
		serialized = append(serialized, u.Serialize())
	}
	webutil.RespondWithJSON(w, http.StatusOK, serialized)
	return nil
}

func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDParam(r)
	if err != nil {
		return webutil.ErrNotFoundWrap(msgUserNotFound, err)
	}

	user, err := h.Repo.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFoundWrap(msgUserNotFound, err)
		}
		return webutil.ErrInternalServerWrap(fmt.Sprintf("failed to retrieve user %d", userID), err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, user.Serialize())
	return nil
}

// HandleCreateUser requires all four user fields. The new id is reported in
// the Location header; the body stays the fixed success marker.
func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) error {
	var req models.CreateUserRequest
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	newUser := req.ToUser()
	if err := h.Repo.CreateUser(r.Context(), &newUser); err != nil {
		if errors.Is(err, datastore.ErrDuplicateEmail) {
			return webutil.ErrConflictWrap(msgDuplicateEmail, err)
		}
		return webutil.ErrInternalServerWrap("failed to create user", err)
	}

	slog.InfoContext(r.Context(), "User created", "id", newUser.ID)
	w.Header().Set(webutil.HeaderLocation, userResourcePrefix+strconv.FormatInt(newUser.ID, 10))
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"Result": "successful"})
	return nil
}

// HandleUpdateUser overwrites only the fields present in the body.
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDParam(r)
	if err != nil {
		return webutil.ErrNotFoundWrap(msgUserNotFound, err)
	}

	user, err := h.Repo.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFoundWrap(msgUserNotFound, err)
		}
		return webutil.ErrInternalServerWrap(fmt.Sprintf("failed to retrieve user %d", userID), err)
	}

	var req models.UpdateUserRequest
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	req.Apply(user)

	if err := h.Repo.UpdateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Deleted between the read and the write.
			return webutil.ErrNotFoundWrap(msgUserNotFound, err)
		case errors.Is(err, datastore.ErrDuplicateEmail):
			return webutil.ErrConflictWrap(msgDuplicateEmail, err)
		default:
			return webutil.ErrInternalServerWrap(fmt.Sprintf("failed to update user %d", userID), err)
		}
	}

	slog.InfoContext(r.Context(), "User updated", "id", userID)
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"Update": "successful"})
	return nil
}

func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDParam(r)
	if err != nil {
		return webutil.ErrNotFoundWrap(msgDeleteNotFound, err)
	}

	if err := h.Repo.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFoundWrap(msgDeleteNotFound, err)
		}
		return webutil.ErrInternalServerWrap(fmt.Sprintf("failed to delete user %d", userID), err)
	}

	slog.InfoContext(r.Context(), "User deleted", "id", userID)
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"Delete": "successful"})
	return nil
}

// userIDParam parses the {id} path segment. The user key is a BIGSERIAL, so
// any int64 is a lookup; values past int64 are treated like unknown ids.
func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, paramUserID)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: %w", raw, err)
	}
	return id, nil
}
