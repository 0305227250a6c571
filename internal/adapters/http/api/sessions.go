// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	service "github.com/fightsight/engine/internal/app"
	"github.com/fightsight/engine/internal/adapters/repository"
	"github.com/fightsight/engine/internal/domain/model"
)

// SessionsHandler handles session intake and read requests.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// sessionRequest mirrors the intake schema for POST /sessions.
type sessionRequest struct {
	Sport          string `json:"sport"`
	Rounds         int    `json:"rounds"`
	PosesPath      string `json:"poses_path"`
	FighterAStance string `json:"fighter_a_stance"`
	FighterBStance string `json:"fighter_b_stance"`
}

func (r sessionRequest) validate() error {
	switch model.SportType(r.Sport) {
	case model.SportBoxing, model.SportKickboxing, model.SportMuayThai, model.SportMMA:
	default:
		return errors.New("unknown sport")
	}
	switch {
	case r.Rounds < 1:
		return errors.New("rounds must be at least 1")
	case strings.TrimSpace(r.PosesPath) == "":
		return errors.New("missing poses_path")
	}
	return nil
}

func stanceOrDefault(s string) model.Stance {
	if s == "" {
		return model.StanceOrthodox
	}
	return model.Stance(s)
}

// sessionResponse is the read shape for one session.
type sessionResponse struct {
	ID                uuid.UUID         `json:"id"`
	Sport             model.SportType   `json:"sport"`
	Rounds            int               `json:"rounds"`
	Status            string            `json:"status"`
	Progress          int               `json:"progress"`
	TotalCost         float64           `json:"total_cost"`
	TotalFrames       int               `json:"total_frames"`
	TotalStrikes      int               `json:"total_strikes"`
	TotalCombinations int               `json:"total_combinations"`
	TotalCandidates   int               `json:"total_candidates"`
	Classified        int               `json:"classified"`
	FalsePositives    int               `json:"false_positives"`
	FailedCandidates  int               `json:"failed_candidates"`
	ProcessingSeconds float64           `json:"processing_seconds"`
	StartedAt         *time.Time        `json:"started_at,omitempty"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	FailedAt          *time.Time        `json:"failed_at,omitempty"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	Fighters          []fighterResponse `json:"fighters,omitempty"`
}

type fighterResponse struct {
	Label          model.FighterLabel `json:"label"`
	Stance         model.Stance       `json:"stance"`
	StrikesThrown  int                `json:"strikes_thrown"`
	StrikesLanded  int                `json:"strikes_landed"`
	StrikesMissed  int                `json:"strikes_missed"`
	Combinations   int                `json:"combinations"`
	StrikesAgainst int                `json:"strikes_against"`
}

func toSessionResponse(s model.AnalysisSession, fighters []model.SessionFighter) sessionResponse {
	resp := sessionResponse{
		ID:                s.ID,
		Sport:             s.Sport,
		Rounds:            s.Rounds,
		Status:            string(s.Status),
		Progress:          s.Progress,
		TotalCost:         s.TotalCost,
		TotalFrames:       s.TotalFrames,
		TotalStrikes:      s.TotalStrikes,
		TotalCombinations: s.TotalCombinations,
		TotalCandidates:   s.TotalCandidates,
		Classified:        s.Classified,
		FalsePositives:    s.FalsePositives,
		FailedCandidates:  s.FailedCandidates,
		ProcessingSeconds: s.ProcessingSeconds,
		StartedAt:         s.StartedAt,
		CompletedAt:       s.CompletedAt,
		FailedAt:          s.FailedAt,
		ErrorMessage:      s.ErrorMessage,
	}
	for _, f := range fighters {
		resp.Fighters = append(resp.Fighters, fighterResponse{
			Label:          f.Label,
			Stance:         f.Stance,
			StrikesThrown:  f.StrikesThrown,
			StrikesLanded:  f.StrikesLanded,
			StrikesMissed:  f.StrikesMissed,
			Combinations:   f.Combinations,
			StrikesAgainst: f.StrikesAgainst,
		})
	}
	return resp
}

// HandleSessions handles POST /sessions requests.
func (h *SessionsHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	sess, err := h.deps.Submit(r.Context(), SubmitRequest{
		Sport:     model.SportType(req.Sport),
		Rounds:    req.Rounds,
		PosesPath: req.PosesPath,
		FighterA:  stanceOrDefault(req.FighterAStance),
		FighterB:  stanceOrDefault(req.FighterBStance),
	})
	switch {
	case errors.Is(err, service.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	case errors.Is(err, service.ErrAlreadyQueued):
		writeError(w, http.StatusConflict, "conflict", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	writeJSON(w, http.StatusAccepted, toSessionResponse(sess, nil))
}

// HandleSession handles GET and DELETE on /sessions/{id}, plus the
// /sessions/{id}/strikes and /sessions/{id}/combinations reads.
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	idPart, sub, _ := strings.Cut(rest, "/")

	id, err := uuid.Parse(idPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid session id"))
		return
	}

	switch {
	case r.Method == http.MethodGet && sub == "":
		h.getSession(w, r, id)
	case r.Method == http.MethodGet && sub == "strikes":
		h.getStrikes(w, r, id)
	case r.Method == http.MethodGet && sub == "combinations":
		h.getCombinations(w, r, id)
	case r.Method == http.MethodDelete && sub == "":
		h.deleteSession(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) getSession(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	sess, fighters, err := h.deps.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess, fighters))
}

func (h *SessionsHandler) getStrikes(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	strikes, err := h.deps.Strikes(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, strikes)
}

func (h *SessionsHandler) getCombinations(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	combos, err := h.deps.Combinations(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, combos)
}

func (h *SessionsHandler) deleteSession(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.deps.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
