package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-care-tracker/internal/domain/care"
	"pet-care-tracker/internal/domain/validation"
	"pet-care-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// dashboardConcurrency acota las lecturas de status en paralelo por request.
const dashboardConcurrency = 4

func RegisterRoutes(r chi.Router, svc *Service, careSvc *care.Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		// Perfil (solo owner)
		pr.Get("/{petID}", getPetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})

	r.Get("/dashboard", dashboardHandler(svc, careSvc))
}

type createPetRequest struct {
	Name             string   `json:"name"`
	Species          string   `json:"species"`
	Sex              string   `json:"sex"`
	BirthDate        string   `json:"birth_date"` // YYYY-MM-DD opcional
	WeightKg         *float64 `json:"weight_kg"`
	Neutered         bool     `json:"neutered"`
	FeedingTime      *int     `json:"feeding_time"`
	FeedingFrequency *int     `json:"feeding_frequency"`
	Notes            string   `json:"notes"`
}

type petResponse struct {
	ID               string     `json:"id"`
	OwnerUserID      string     `json:"owner_user_id"`
	Name             string     `json:"name"`
	Species          Species    `json:"species"`
	Sex              Sex        `json:"sex"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
	WeightKg         *float64   `json:"weight_kg,omitempty"`
	Neutered         bool       `json:"neutered"`
	FeedingTime      *int       `json:"feeding_time,omitempty"`
	FeedingFrequency *int       `json:"feeding_frequency,omitempty"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type dashboardItem struct {
	Pet        petResponse   `json:"pet"`
	Urgent     care.CareType `json:"urgent,omitempty"`
	NeedsCount int           `json:"needs_count"`
	MoodScore  *float64      `json:"mood_score,omitempty"`
}

// createPetHandler godoc
// @Summary Crear mascota
// @Tags pets
// @Accept json
// @Produce json
// @Param body body createPetRequest true "Mascota"
// @Success 201 {object} petResponse
// @Failure 400 {object} validation.Result
// @Failure 401 {string} string
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:             req.Name,
			Species:          req.Species,
			Sex:              req.Sex,
			BirthDate:        bd,
			WeightKg:         req.WeightKg,
			Neutered:         req.Neutered,
			FeedingTime:      req.FeedingTime,
			FeedingFrequency: req.FeedingFrequency,
			Notes:            req.Notes,
		})
		if err != nil {
			var res validation.Result
			switch {
			case errors.As(err, &res):
				writeJSON(w, http.StatusBadRequest, res)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar mis mascotas
// @Tags pets
// @Produce json
// @Success 200 {array} petResponse
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path string true "Pet ID"
// @Success 200 {object} petResponse
// @Failure 404 {string} string
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.OwnedPet(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			writePetError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota (y su historial)
// @Tags pets
// @Param petID path string true "Pet ID"
// @Success 204
// @Failure 404 {string} string
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), claims.UserID); err != nil {
			writePetError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// dashboardHandler godoc
// @Summary Resumen de mis mascotas: necesidad urgente y ánimo del día
// @Tags pets
// @Produce json
// @Success 200 {array} dashboardItem
// @Router /dashboard [get]
func dashboardHandler(svc *Service, careSvc *care.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]dashboardItem, len(items))
		g, ctx := errgroup.WithContext(r.Context())
		g.SetLimit(dashboardConcurrency)

		for i, p := range items {
			g.Go(func() error {
				st, err := careSvc.Status(ctx, p.ID, p.CareConfig())
				if err != nil {
					return err
				}

				item := dashboardItem{Pet: toPetResponse(p), Urgent: st.Urgent}
				for _, ct := range care.AllCareTypes {
					if st.Needs.Get(ct) {
						item.NeedsCount++
					}
				}
				if st.Mood != nil {
					score := st.Mood.Score
					item.MoodScore = &score
				}
				out[i] = item
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func writePetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
		http.Error(w, "pet not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:               p.ID,
		OwnerUserID:      p.OwnerUserID,
		Name:             p.Name,
		Species:          p.Species,
		Sex:              p.Sex,
		BirthDate:        p.BirthDate,
		WeightKg:         p.WeightKg,
		Neutered:         p.Neutered,
		FeedingTime:      p.FeedingTime,
		FeedingFrequency: p.FeedingFrequency,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos (pets/care/assist)
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
