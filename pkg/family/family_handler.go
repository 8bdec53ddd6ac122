package family

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/famhub/famhub/internal/rest"
	log "github.com/sirupsen/logrus"
)

type FamilyDTO struct {
	Uid      string      `json:"uid"`
	Name     string      `json:"name"`
	Slug     string      `json:"slug"`
	Settings SettingsDTO `json:"settings"`
}

type SettingsDTO struct {
	Timezone string `json:"timezone"`
}

type Handler struct {
	familyService Service
}

func NewHandler(familyService Service) *Handler {
	return &Handler{familyService: familyService}
}

// CreateFamily godoc
// @Summary Register a new family
// @Tags Family
// @Accept json
// @Produce json
// @Param family body FamilyDTO true "Family"
// @Success 201 {object} FamilyDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/family [post]
func (h *Handler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating family")

	var dto FamilyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}
	if dto.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Family name is required",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	created, err := h.familyService.CreateFamily(r.Context(), dtoToFamily(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(familyToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) CurrentFamily(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	f, err := h.familyService.GetCurrentFamily(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoFamily) || errors.Is(err, ErrFamilyNotFound) {
			http.Error(w, "family not found", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(familyToDTO(f)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto FamilyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	updated, err := h.familyService.UpdateFamily(r.Context(), dtoToFamily(dto))
	if err != nil {
		if errors.Is(err, ErrFamilyNotFound) {
			http.Error(w, "family not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(familyToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// IsSlugAvailable godoc
// @Summary Check whether a family slug is free
// @Tags Family
// @Produce json
// @Param slug query string true "Slug"
// @Success 200 {object} map[string]bool
// @Router /api/family/slug-availability [get]
func (h *Handler) IsSlugAvailable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	slug := r.URL.Query().Get("slug")
	if slug == "" {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "slug query parameter is required",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	available, err := h.familyService.IsSlugAvailable(r.Context(), slug)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]bool{"available": available}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func familyToDTO(f Family) FamilyDTO {
	return FamilyDTO{
		Uid:  f.Uid,
		Name: f.Name,
		Slug: f.Slug,
		Settings: SettingsDTO{
			Timezone: f.Settings.Timezone,
		},
	}
}

func dtoToFamily(dto FamilyDTO) Family {
	return Family{
		Uid:  dto.Uid,
		Name: dto.Name,
		Slug: dto.Slug,
		Settings: Settings{
			Timezone: dto.Settings.Timezone,
		},
	}
}
