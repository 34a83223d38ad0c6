package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riajames27/company-user-REST/internal/broker"
	"github.com/riajames27/company-user-REST/internal/models"
	"github.com/riajames27/company-user-REST/internal/repository"
	"github.com/riajames27/company-user-REST/internal/utils"
)

type UserRepo interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateFields(ctx context.Context, id int64, cols []string, vals []any) error
	Deactivate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type UserHandler struct {
	Repo UserRepo
	Pub  Publisher
}

func NewUserHandler(repo UserRepo, pub Publisher) *UserHandler {
	return &UserHandler{Repo: repo, Pub: pub}
}

// expects /api/users/{id}/deactivate
func parseDeactivatePath(path string) (int64, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 || parts[0] != "api" || parts[1] != "users" || parts[3] != "deactivate" {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *UserHandler) Users(w http.ResponseWriter, r *http.Request) {
	switch r.Method {

	case http.MethodGet:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		list, err := h.Repo.GetAll(ctx)
		if err != nil {
			slog.Error("users_list_error", "err", err)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error fetching users"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var dto UserCreateDTO
		if err := utils.DecodeStrict(r.Body, &dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		if err := validateUserCreateDTO(dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}

		u := models.User{
			FirstName:   dto.FirstName,
			LastName:    dto.LastName,
			Email:       dto.Email,
			Designation: dto.Designation,
			DateOfBirth: dto.DateOfBirth,
			Active:      true, // default when absent
			CompanyID:   dto.CompanyID,
		}
		if len(dto.Active) > 0 {
			u.Active = coerceBool(dto.Active)
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.Repo.Create(ctx, &u); err != nil {
			slog.Error("user_create_error", "err", err)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error creating user"})
			return
		}

		h.publishEvent("created", &u)
		utils.WriteJSON(w, http.StatusCreated, u)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *UserHandler) UserByID(w http.ResponseWriter, r *http.Request) {
	// the deactivate action has its own path shape
	if r.Method == http.MethodPatch {
		if id, ok := parseDeactivatePath(r.URL.Path); ok {
			h.deactivate(w, r, id)
			return
		}
	}

	id, ok := parseIDFromPath(r.URL.Path, "users")
	if !ok {
		utils.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}

	switch r.Method {

	case http.MethodGet:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		u, err := h.Repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
				return
			}
			slog.Error("user_get_error", "id", id, "err", err)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error fetching user"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, u)

	case http.MethodPut:
		h.update(w, r, id)

	case http.MethodDelete:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.Repo.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
				return
			}
			slog.Error("user_delete_error", "id", id, "err", err)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error deleting user"})
			return
		}
		h.publishEvent("deleted", &models.User{ID: id})
		utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// update applies a partial update: fields absent from the body keep
// their stored values. Migration is this same path with only
// company_id present.
func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	body, err := utils.DecodeRaw(r.Body)
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	cols := []string{}
	vals := []any{}
	for _, f := range userUpdateFields {
		raw, present := body[f.name]
		if !present {
			continue
		}
		v, err := f.coerce(raw)
		if err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		cols = append(cols, f.name)
		vals = append(vals, v)
	}
	if len(cols) == 0 {
		utils.BadRequest(w, "No valid fields provided to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Repo.UpdateFields(ctx, id, cols, vals); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
			return
		}
		slog.Error("user_update_error", "id", id, "err", err)
		utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error updating user"})
		return
	}

	action := "updated"
	if len(cols) == 1 && cols[0] == "company_id" {
		action = "migrated"
	}
	h.publishEvent(action, &models.User{ID: id})
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
}

func (h *UserHandler) deactivate(w http.ResponseWriter, r *http.Request, id int64) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
			return
		}
		slog.Error("user_deactivate_error", "id", id, "err", err)
		utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error deactivating user"})
		return
	}
	h.publishEvent("deactivated", &models.User{ID: id})
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deactivated"})
}

func (h *UserHandler) publishEvent(action string, u *models.User) {
	if h.Pub == nil || u == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	ev := broker.Event{Entity: "user", Action: action, ID: u.ID, Name: name}
	if err := h.Pub.PublishEvent(ctx, ev); err != nil {
		slog.Warn("publish_event_error", "entity", "user", "action", action, "err", err)
	}
}
