package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/joao-fontenele/storefront/internal/auth"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/respond"
)

type Store interface {
	Create(ctx context.Context, u *domain.User) error
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) error
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	store  Store
	issuer *auth.TokenIssuer
	logger *slog.Logger
}

func NewHandler(store Store, issuer *auth.TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		issuer: issuer,
		logger: logger,
	}
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.Registration
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}
	if err := req.Validate(); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to hash password")
		return
	}

	user := &domain.User{
		Login:        req.Login,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         domain.RoleUser,
		PasswordHash: hash,
	}
	if err := h.store.Create(r.Context(), user); err != nil {
		respond.FromError(w, h.logger, err, "failed to register user", "login", req.Login)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "login", user.Login)
	respond.JSON(w, h.logger, http.StatusCreated, map[string]any{
		"message": "registration successful",
		"userId":  user.ID,
	})
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginUser struct {
	ID    int64       `json:"id"`
	Login string      `json:"login"`
	Role  domain.Role `json:"role"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		respond.FromError(w, h.logger, domain.Invalid("login and password are required"), "")
		return
	}

	user, err := h.store.GetByLogin(r.Context(), req.Login)
	if errors.Is(err, domain.ErrUserNotFound) {
		respond.FromError(w, h.logger, domain.ErrBadCredentials, "")
		return
	}
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to load user", "login", req.Login)
		return
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to verify password", "user_id", user.ID)
		return
	}
	if !ok {
		h.logger.Warn("login rejected", "user_id", user.ID)
		respond.FromError(w, h.logger, domain.ErrBadCredentials, "")
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to issue token", "user_id", user.ID)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	respond.JSON(w, h.logger, http.StatusOK, loginResponse{
		Message: "login successful",
		Token:   token,
		User:    loginUser{ID: user.ID, Login: user.Login, Role: user.Role},
	})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respond.FromError(w, h.logger, domain.ErrUnauthenticated, "")
		return
	}

	user, err := h.store.GetByID(r.Context(), id.UserID)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to get profile", "user_id", id.UserID)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, user)
}

type patchRequest struct {
	Login    *string `json:"login"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// patch converts the request into a UserPatch, hashing a new password. Role
// is only honoured when allowRole is set.
func (req patchRequest) patch(allowRole bool) (domain.UserPatch, error) {
	var p domain.UserPatch

	for _, f := range []struct {
		name string
		in   *string
		out  **string
	}{
		{"login", req.Login, &p.Login},
		{"email", req.Email, &p.Email},
		{"phone", req.Phone, &p.Phone},
	} {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v == "" {
			return p, domain.Invalid(f.name + " cannot be empty")
		}
		*f.out = &v
	}
	if p.Email != nil && !strings.Contains(*p.Email, "@") {
		return p, domain.Invalid("email is malformed")
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return p, err
		}
		p.PasswordHash = &hash
	}

	if req.Role != nil {
		if !allowRole {
			return p, fmt.Errorf("%w: role can only be changed by an admin", domain.ErrForbidden)
		}
		role := domain.Role(*req.Role)
		if !role.Valid() {
			return p, domain.Invalid("role must be User or Admin")
		}
		p.Role = &role
	}

	if p.Empty() {
		return p, domain.Invalid("nothing to update")
	}
	return p, nil
}

func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respond.FromError(w, h.logger, domain.ErrUnauthenticated, "")
		return
	}

	var req patchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}
	patch, err := req.patch(false)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to prepare profile update")
		return
	}

	if err := h.store.Update(r.Context(), id.UserID, patch); err != nil {
		respond.FromError(w, h.logger, err, "failed to update profile", "user_id", id.UserID)
		return
	}

	h.logger.Info("profile updated", "user_id", id.UserID)
	respond.Message(w, h.logger, http.StatusOK, "profile updated")
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to list users")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, users)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond.FromError(w, h.logger, domain.ErrUserNotFound, "")
		return
	}

	var req patchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}
	patch, err := req.patch(true)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to prepare user update")
		return
	}

	if err := h.store.Update(r.Context(), id, patch); err != nil {
		respond.FromError(w, h.logger, err, "failed to update user", "user_id", id)
		return
	}

	h.logger.Info("user updated", "user_id", id)
	respond.Message(w, h.logger, http.StatusOK, "user updated")
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond.FromError(w, h.logger, domain.ErrUserNotFound, "")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respond.FromError(w, h.logger, err, "failed to delete user", "user_id", id)
		return
	}

	h.logger.Info("user deleted", "user_id", id)
	respond.Message(w, h.logger, http.StatusOK, "user and all related data deleted")
}
