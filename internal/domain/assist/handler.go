package assist

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pet-care-tracker/internal/domain/care"
	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/domain/validation"
	"pet-care-tracker/internal/middleware"
	"pet-care-tracker/internal/ports/flavor"
)

func RegisterRoutes(r chi.Router, svc *Service, petSvc *pets.Service, careSvc *care.Service) {
	r.Route("/assist", func(ar chi.Router) {
		ar.Post("/names", namesHandler(svc))
		ar.Post("/care-plan", carePlanHandler(svc))
		ar.Post("/summary", summaryHandler(svc))
	})

	r.Post("/pets/{petID}/chat", chatHandler(svc, petSvc, careSvc))
	r.Post("/pets/{petID}/summary", petSummaryHandler(svc, petSvc))
}

type namesRequest struct {
	Species string `json:"species"`
	Sex     string `json:"sex"`
}

type chatRequest struct {
	Message      string           `json:"message"`
	Conversation []flavor.Message `json:"conversation"`
}

// namesHandler godoc
// @Summary Sugerir nombres
// @Description Cinco nombres para la especie y sexo. Si el proveedor falla devuelve nombres fijos con model_used=fallback.
// @Tags assist
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param body body namesRequest true "Especie y sexo"
// @Success 200 {object} Names
// @Failure 400 {object} validation.Result
// @Failure 401 {string} string "unauthorized"
// @Router /assist/names [post]
func namesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req namesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.SuggestNames(r.Context(), NamesInput{Species: req.Species, Sex: req.Sex})
		if err != nil {
			writeAssistError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// carePlanHandler godoc
// @Summary Revisar plan de cuidados
// @Description Reglas fijas primero (comidas, intervalo, cepillado, arena); si pasan, comentario del proveedor.
// @Tags assist
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param body body CarePlan true "Plan"
// @Success 200 {object} Review
// @Failure 400 {object} validation.Result
// @Failure 401 {string} string "unauthorized"
// @Router /assist/care-plan [post]
func carePlanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req CarePlan
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.ReviewCarePlan(r.Context(), req)
		if err != nil {
			writeAssistError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// summaryHandler godoc
// @Summary Resumir un perfil
// @Description Una frase cálida sobre el perfil que se está cargando (todos los campos opcionales). Si el proveedor falla devuelve una frase fija con model_used=fallback.
// @Tags assist
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param body body Profile true "Perfil"
// @Success 200 {object} Summary
// @Failure 400 {object} validation.Result
// @Failure 401 {string} string "unauthorized"
// @Router /assist/summary [post]
func summaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req Profile
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.Summarize(r.Context(), req)
		if err != nil {
			writeAssistError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// petSummaryHandler godoc
// @Summary Resumir una mascota guardada
// @Description Igual que /assist/summary pero con el perfil guardado. Solo el dueño.
// @Tags assist
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} Summary
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/summary [post]
func petSummaryHandler(svc *Service, petSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := petSvc.OwnedPet(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			if errors.Is(err, pets.ErrNotFound) || errors.Is(err, pets.ErrInvalidInput) {
				http.Error(w, "pet not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out, err := svc.Summarize(r.Context(), profileOf(p))
		if err != nil {
			writeAssistError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func profileOf(p pets.Pet) Profile {
	out := Profile{
		Name:             p.Name,
		Species:          string(p.Species),
		Sex:              string(p.Sex),
		WeightKg:         p.WeightKg,
		Neutered:         p.Neutered,
		FeedingTime:      p.FeedingTime,
		FeedingFrequency: p.FeedingFrequency,
	}
	if p.BirthDate != nil {
		out.BirthDate = p.BirthDate.Format("2006-01-02")
	}
	return out
}

// chatHandler godoc
// @Summary Chat con la mascota
// @Description Respuesta breve con el estado de cuidados de hoy como contexto. Solo el dueño.
// @Tags assist
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param petID path string true "ID de la mascota"
// @Param body body chatRequest true "Mensaje"
// @Success 200 {object} ChatReply
// @Failure 400 {object} validation.Result
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/chat [post]
func chatHandler(svc *Service, petSvc *pets.Service, careSvc *care.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := petSvc.OwnedPet(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			if errors.Is(err, pets.ErrNotFound) || errors.Is(err, pets.ErrInvalidInput) {
				http.Error(w, "pet not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := ChatInput{
			PetName: p.Name,
			Species: string(p.Species),
			Message: req.Message,
			History: req.Conversation,
		}
		// El estado es contexto opcional; sin él el chat sigue.
		if st, err := careSvc.Status(r.Context(), p.ID, p.CareConfig()); err == nil {
			in.Status = &st
		}

		out, err := svc.Chat(r.Context(), in)
		if err != nil {
			writeAssistError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func writeAssistError(w http.ResponseWriter, err error) {
	var res validation.Result
	switch {
	case errors.As(err, &res):
		writeJSON(w, http.StatusBadRequest, res)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
