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
	"github.com/riajames27/company-user-REST/internal/geo"
	"github.com/riajames27/company-user-REST/internal/metrics"
	"github.com/riajames27/company-user-REST/internal/models"
	"github.com/riajames27/company-user-REST/internal/repository"
	"github.com/riajames27/company-user-REST/internal/utils"
)

type CompanyRepo interface {
	GetAll(ctx context.Context) ([]models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	Create(ctx context.Context, name, address string, coords *geo.Coordinates) (*models.Company, error)
	Update(ctx context.Context, id int64, name, address string, coords *geo.Coordinates) error
	Delete(ctx context.Context, id int64) error
}

type Publisher interface {
	PublishEvent(ctx context.Context, ev broker.Event) error
	Close() error
}

type CompanyHandler struct {
	Repo CompanyRepo
	Geo  geo.Locator
	Pub  Publisher
}

func NewCompanyHandler(repo CompanyRepo, loc geo.Locator, pub Publisher) *CompanyHandler {
	return &CompanyHandler{Repo: repo, Geo: loc, Pub: pub}
}

// expects /api/<resource>/{id}; the id must be numeric
func parseIDFromPath(path, resource string) (int64, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "api" || parts[1] != resource {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *CompanyHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// lookupCoordinates never fails the caller: transport errors and empty
// results both come back as nil, leaving the coordinates null.
func (h *CompanyHandler) lookupCoordinates(ctx context.Context, address string) *geo.Coordinates {
	coords, err := h.Geo.Locate(ctx, address)
	if err != nil {
		slog.Warn("geocode_error", "address", address, "err", err)
		metrics.ObserveGeocode("error")
		return nil
	}
	if coords == nil {
		metrics.ObserveGeocode("miss")
		return nil
	}
	metrics.ObserveGeocode("hit")
	return coords
}

func (h *CompanyHandler) Companies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {

	case http.MethodGet:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		list, err := h.Repo.GetAll(ctx)
		if err != nil {
			slog.Error("companies_list_error", "err", err)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error fetching companies"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var dto CompanyUpsertDTO
		if err := utils.DecodeStrict(r.Body, &dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		if err := validateCompanyDTO(dto); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}

		coords := h.lookupCoordinates(r.Context(), dto.Address)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		c, err := h.Repo.Create(ctx, dto.Name, dto.Address, coords)
		if err != nil {
			slog.Error("company_create_error", "err", err)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error creating company"})
			return
		}

		h.publishEvent("created", c)
		utils.WriteJSON(w, http.StatusCreated, c)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *CompanyHandler) CompanyByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDFromPath(r.URL.Path, "companies")
	if !ok {
		utils.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Company not found"})
		return
	}

	switch r.Method {

	case http.MethodGet:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		c, err := h.Repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Company not found"})
				return
			}
			slog.Error("company_get_error", "id", id, "err", err)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error fetching company"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, c)

	case http.MethodPut:
		var dto CompanyUpsertDTO
		if err := utils.DecodeStrict(r.Body, &dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		if err := validateCompanyDTO(dto); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}

		// always re-resolves, even when the address did not change
		coords := h.lookupCoordinates(r.Context(), dto.Address)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.Repo.Update(ctx, id, dto.Name, dto.Address, coords); err != nil {
			slog.Error("company_update_error", "id", id, "err", err)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error updating company"})
			return
		}

		var lat, lon *float64
		if coords != nil {
			lat = &coords.Latitude
			lon = &coords.Longitude
		}
		h.publishEvent("updated", &models.Company{ID: id, Name: dto.Name, Address: dto.Address})
		utils.WriteJSON(w, http.StatusOK, map[string]any{
			"message":   "Company updated",
			"latitude":  lat,
			"longitude": lon,
		})

	case http.MethodDelete:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.Repo.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrCompanyReferenced) {
				utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot delete: company is referenced by users"})
				return
			}
			slog.Error("company_delete_error", "id", id, "err", err)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error deleting company"})
			return
		}

		h.publishEvent("deleted", &models.Company{ID: id})
		utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Company deleted"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *CompanyHandler) publishEvent(action string, c *models.Company) {
	if h.Pub == nil || c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ev := broker.Event{Entity: "company", Action: action, ID: c.ID, Name: c.Name}
	if err := h.Pub.PublishEvent(ctx, ev); err != nil {
		slog.Warn("publish_event_error", "entity", "company", "action", action, "err", err)
	}
}
