package care

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-care-tracker/internal/domain/validation"
	"pet-care-tracker/internal/middleware"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
)

const (
	defaultLogsLimit = 50
	maxLogsLimit     = 500
	defaultMoodDays  = 7
	maxMoodDays      = 365
)

// CarePet es lo mínimo que el módulo necesita de una mascota.
type CarePet struct {
	ID     string
	Name   string
	Config PetConfig
}

// PetAccess resuelve la mascota del caller (solo owner).
// Debe devolver un error que envuelva ErrNotFound si no existe o no es suya.
type PetAccess interface {
	CarePet(ctx context.Context, petID, userID string) (CarePet, error)
}

func RegisterRoutes(r chi.Router, svc *Service, pets PetAccess) {
	r.Route("/pets/{petID}/care", func(cr chi.Router) {
		cr.Get("/status", statusHandler(svc, pets))
		cr.Get("/logs", logsHandler(svc, pets))
	})

	r.Route("/pets/{petID}/mood", func(mr chi.Router) {
		mr.Get("/", moodHistoryHandler(svc, pets))
		mr.Post("/rebuild", rebuildMoodHandler(svc, pets))
	})

	r.Post("/care", performCareHandler(svc, pets))
}

type performCareRequest struct {
	PetID    string   `json:"petId"`
	CareType string   `json:"careType" enums:"FEED,WATER,TREAT,PLAY,NAILS,BRUSH,LITTER,VACCINE"`
	AmountG  *float64 `json:"amountG"`
	Note     string   `json:"note"`
}

type careLogResponse struct {
	ID      string    `json:"id"`
	PetID   string    `json:"pet_id"`
	Type    CareType  `json:"care_type"`
	At      time.Time `json:"at"`
	AmountG *float64  `json:"amount_g,omitempty"`
	Note    string    `json:"note,omitempty"`
}

type performCareResponse struct {
	Success  bool            `json:"success"`
	CareLog  careLogResponse `json:"care_log"`
	Message  string          `json:"message"`
	Replayed bool            `json:"replayed,omitempty"`
	Mood     *moodResponse   `json:"mood,omitempty"`
}

type notAllowedResponse struct {
	Error         string    `json:"error"`
	CareType      CareType  `json:"care_type"`
	NextAllowedAt time.Time `json:"next_allowed_at"`
	RetryIn       string    `json:"retry_in"`
}

type moodResponse struct {
	Date      string    `json:"date"`
	Score     float64   `json:"score"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type nextAllowedResponse struct {
	At time.Time `json:"at"`
	In string    `json:"in"`
}

type statusResponse struct {
	PetID         string                           `json:"pet_id"`
	Now           time.Time                        `json:"now"`
	Counts        Counts                           `json:"counts"`
	Needs         Flags                            `json:"needs"`
	Allowed       Flags                            `json:"allowed"`
	NextAllowedAt map[CareType]nextAllowedResponse `json:"next_allowed_at"`
	Urgent        CareType                         `json:"urgent,omitempty"`
	Mood          *moodResponse                    `json:"mood,omitempty"`
}

type rebuildMoodResponse struct {
	Changed bool          `json:"changed"`
	Mood    *moodResponse `json:"mood,omitempty"`
}

// performCareHandler godoc
// @Summary Registrar una acción de cuidado
// @Description Valida, re-chequea cupos y cooldowns dentro de la sección crítica de la mascota, agrega el evento y ajusta el ánimo del día. `Idempotency-Key` opcional: un reintento con la misma clave devuelve el evento original. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags care
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param Idempotency-Key header string false "Clave de reintento seguro"
// @Param payload body performCareRequest true "Acción de cuidado"
// @Success 201 {object} performCareResponse
// @Failure 400 {object} validation.Result
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Pet not found"
// @Failure 409 {object} notAllowedResponse
// @Failure 500 {string} string "Failed to perform care activity"
// @Router /care [post]
func performCareHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req performCareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		idemKey := r.Header.Get("Idempotency-Key")
		if res := ValidateApply(req.PetID, req.CareType, req.AmountG, validation.PlainText(req.Note), idemKey); !res.OK() {
			writeJSON(w, http.StatusBadRequest, res)
			return
		}

		pet, err := pets.CarePet(r.Context(), req.PetID, claims.UserID)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		res, err := svc.Apply(r.Context(), ApplyInput{
			PetID:          pet.ID,
			Type:           CareType(req.CareType),
			AmountG:        req.AmountG,
			Note:           req.Note,
			IdempotencyKey: idemKey,
		}, pet.Config)
		if err != nil {
			var (
				vr validation.Result
				na *NotAllowedError
			)
			switch {
			case errors.As(err, &vr):
				writeJSON(w, http.StatusBadRequest, vr)
			case errors.As(err, &na):
				writeJSON(w, http.StatusConflict, notAllowedResponse{
					Error:         fmt.Sprintf("%s is not allowed right now", strings.ToLower(string(na.Type))),
					CareType:      na.Type,
					NextAllowedAt: na.NextAllowedAt,
					RetryIn:       humanize.RelTime(na.NextAllowedAt, svc.clock(), "ago", "from now"),
				})
			case errors.Is(err, ErrDuplicate):
				http.Error(w, "duplicate request", http.StatusConflict)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "Failed to perform care activity", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, performCareResponse{
			Success:  true,
			CareLog:  toCareLogResponse(res.Event),
			Message:  fmt.Sprintf("Successfully logged %s for %s!", strings.ToLower(string(res.Event.Type)), pet.Name),
			Replayed: res.Replayed,
			Mood:     toMoodResponse(res.Mood),
		})
	}
}

// statusHandler godoc
// @Summary Estado de cuidados de hoy
// @Description Conteos del día, necesidades, acciones permitidas, próximo instante permitido por tipo bloqueado, necesidad urgente y ánimo del día.
// @Tags care
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} statusResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/care/status [get]
func statusHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		pet, err := pets.CarePet(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		st, err := svc.Status(r.Context(), pet.ID, pet.Config)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toStatusResponse(pet.ID, st))
	}
}

// logsHandler godoc
// @Summary Historial de cuidados
// @Tags care
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param petID path string true "ID de la mascota"
// @Param types query string false "Tipos separados por coma (FEED,WATER,...)"
// @Param from query string false "RFC3339"
// @Param to query string false "RFC3339"
// @Param limit query int false "Máximo de items (default 50, máx 500)"
// @Success 200 {array} careLogResponse
// @Failure 400 {string} string
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/care/logs [get]
func logsHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		pet, err := pets.CarePet(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.History(r.Context(), pet.ID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]careLogResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toCareLogResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// moodHistoryHandler godoc
// @Summary Historial de ánimo por día
// @Tags care
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param petID path string true "ID de la mascota"
// @Param days query int false "Cantidad de días incluyendo hoy (default 7, máx 365)"
// @Success 200 {array} moodResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/mood [get]
func moodHistoryHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		pet, err := pets.CarePet(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		days := defaultMoodDays
		if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > maxMoodDays {
				http.Error(w, "days must be between 1 and 365", http.StatusBadRequest)
				return
			}
			days = n
		}

		items, err := svc.MoodHistory(r.Context(), pet.ID, days)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]moodResponse, 0, len(items))
		for i := range items {
			out = append(out, *toMoodResponse(&items[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// rebuildMoodHandler godoc
// @Summary Recalcular el ánimo de un día desde el historial
// @Description Repara un ánimo que quedó desalineado del log de cuidados (por ejemplo tras una escritura parcial).
// @Tags care
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param petID path string true "ID de la mascota"
// @Param day query string false "YYYY-MM-DD (default hoy)"
// @Success 200 {object} rebuildMoodResponse
// @Failure 400 {string} string
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/mood/rebuild [post]
func rebuildMoodHandler(svc *Service, pets PetAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		pet, err := pets.CarePet(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		m, changed, err := svc.RebuildMood(r.Context(), pet.ID, r.URL.Query().Get("day"))
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "day must be YYYY-MM-DD and not in the future", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := rebuildMoodResponse{Changed: changed}
		if m.ID != "" {
			out.Mood = toMoodResponse(&m)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	f := ListFilter{Limit: defaultLogsLimit}

	if raw := strings.TrimSpace(q.Get("types")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t, err := ParseCareType(part)
			if err != nil {
				return ListFilter{}, fmt.Errorf("unknown care type %q", strings.TrimSpace(part))
			}
			f.Types = append(f.Types, t)
		}
	}

	for key, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, fmt.Errorf("%s must be RFC3339", key)
		}
		*dst = &t
	}

	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxLogsLimit {
			return ListFilter{}, fmt.Errorf("limit must be between 1 and %d", maxLogsLimit)
		}
		f.Limit = n
	}
	return f, nil
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Pet not found", http.StatusNotFound)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toCareLogResponse(e CareEvent) careLogResponse {
	return careLogResponse{
		ID:      e.ID,
		PetID:   e.PetID,
		Type:    e.Type,
		At:      e.At,
		AmountG: e.AmountG,
		Note:    e.Note,
	}
}

func toMoodResponse(m *MoodRecord) *moodResponse {
	if m == nil {
		return nil
	}
	return &moodResponse{
		Date:      m.Date,
		Score:     m.Score,
		Note:      m.Note,
		UpdatedAt: m.UpdatedAt,
	}
}

func toStatusResponse(petID string, st PetStatus) statusResponse {
	next := make(map[CareType]nextAllowedResponse, len(st.NextAllowedAt))
	for t, at := range st.NextAllowedAt {
		next[t] = nextAllowedResponse{
			At: at,
			In: humanize.RelTime(at, st.Now, "ago", "from now"),
		}
	}
	return statusResponse{
		PetID:         petID,
		Now:           st.Now,
		Counts:        st.Counts,
		Needs:         st.Needs,
		Allowed:       st.Allowed,
		NextAllowedAt: next,
		Urgent:        st.Urgent,
		Mood:          toMoodResponse(st.Mood),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
