// Package api provides the HTTP surface of the review session. It only
// exchanges typed values with the session engine; all session state lives
// behind the engine's lock.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/session"
)

// CardView is the rendered form of the current card. Answer fields are
// omitted until the card is revealed.
type CardView struct {
	Type     string `json:"type"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

// ProgressView is the done/total session progress.
type ProgressView struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// SummaryView describes a finished session.
type SummaryView struct {
	Reviewed        int       `json:"reviewed"`
	DurationSeconds float64   `json:"duration_seconds"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// SessionResponse is the body of GET /api/session.
type SessionResponse struct {
	Finished bool          `json:"finished"`
	Revealed bool          `json:"revealed"`
	DeckName string        `json:"deck_name,omitempty"`
	Progress *ProgressView `json:"progress,omitempty"`
	Card     *CardView     `json:"card,omitempty"`
	Summary  *SummaryView  `json:"summary,omitempty"`
}

// ActionRequest is the body of POST /api/session/actions.
type ActionRequest struct {
	Action string `json:"action" validate:"required,oneof=reveal grade undo end"`
	Grade  string `json:"grade" validate:"omitempty,oneof=forgot hard good easy"`
}

// SessionHandler handles session-related HTTP requests.
type SessionHandler struct {
	engine    *session.Engine
	validator *validator.Validate
	logger    *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(engine *session.Engine, logger *slog.Logger) *SessionHandler {
	if engine == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("engine cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		engine:    engine,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "session_handler")),
	}
}

// GetSession handles GET /api/session requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view := h.engine.CurrentView()

	resp := SessionResponse{
		Finished: view.Finished,
		Revealed: view.Revealed,
	}
	if view.Finished {
		resp.Summary = &SummaryView{
			Reviewed:        view.Summary.Reviewed,
			DurationSeconds: view.Summary.Duration.Seconds(),
			StartedAt:       view.Summary.StartedAt,
			FinishedAt:      view.Summary.FinishedAt,
		}
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
		return
	}

	resp.DeckName = view.Card.DeckName()
	resp.Progress = &ProgressView{Done: view.Done, Total: view.Total}
	resp.Card = renderCard(*view.Card, view.Revealed)
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// DispatchAction handles POST /api/session/actions requests. Precondition
// misses inside the engine are no-ops and still return 204; only malformed
// requests and flush failures are errors.
func (h *SessionHandler) DispatchAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	action, err := parseAction(req)
	if err != nil {
		h.logger.Debug("malformed action", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.Dispatch(r.Context(), action); err != nil {
		h.logger.Error("action failed",
			slog.String("action", string(action.Kind)),
			slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Action failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseAction(req ActionRequest) (session.Action, error) {
	switch session.ActionKind(req.Action) {
	case session.ActionReveal, session.ActionUndo, session.ActionEnd:
		return session.Action{Kind: session.ActionKind(req.Action)}, nil
	case session.ActionGrade:
		grade, err := domain.ParseGrade(req.Grade)
		if err != nil {
			return session.Action{}, err
		}
		return session.Action{Kind: session.ActionGrade, Grade: grade}, nil
	default:
		return session.Action{}, fmt.Errorf("unknown action %q", req.Action)
	}
}

func renderCard(card domain.Card, revealed bool) *CardView {
	switch content := card.Content().(type) {
	case domain.BasicContent:
		view := &CardView{Type: string(domain.CardTypeBasic), Question: content.Question}
		if revealed {
			view.Answer = content.Answer
		}
		return view
	case domain.ClozeContent:
		view := &CardView{Type: string(domain.CardTypeCloze)}
		if revealed {
			view.Prompt = content.Revealed()
		} else {
			view.Prompt = content.Prompt()
		}
		return view
	default:
		return &CardView{Type: string(card.Content().Type())}
	}
}
