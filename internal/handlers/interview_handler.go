package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mockmate/interviewer/internal/history"
	"mockmate/interviewer/internal/interview"
	"mockmate/interviewer/internal/middleware"
	"mockmate/interviewer/internal/models"
	"mockmate/interviewer/internal/utils"
)

const defaultHistoryLimit = 20

type InterviewHandler struct {
	engine *interview.Engine
	store  *history.Store
	logger *zap.Logger
}

// NewInterviewHandler creates the handler for the session API. store may be
// nil when history persistence is disabled.
func NewInterviewHandler(engine *interview.Engine, store *history.Store, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	session, err := h.engine.StartInterview(r.Context(), req.Config())
	if err != nil {
		h.logger.Error("failed to start interview", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "start_failed",
			Message: "Failed to start interview session",
		})
		return
	}

	utils.JSON(w, http.StatusCreated, session)
}

func (h *InterviewHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)

	evaluation, err := h.engine.SubmitAnswer(r.Context(), sessionID, req.Answer)
	if err != nil {
		h.writeEngineError(w, sessionID, err)
		return
	}

	utils.JSON(w, http.StatusOK, models.SubmitAnswerResponse{
		SessionID:  sessionID,
		Evaluation: evaluation,
	})
}

func (h *InterviewHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.engine.EndInterview(r.Context(), sessionID)
	if err != nil {
		h.writeEngineError(w, sessionID, err)
		return
	}

	utils.JSON(w, http.StatusOK, session)
}

func (h *InterviewHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.engine.GetSession(sessionID)
	if err != nil {
		h.writeEngineError(w, sessionID, err)
		return
	}

	utils.JSON(w, http.StatusOK, session)
}

func (h *InterviewHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
			Code:    "history_disabled",
			Message: "Session history is not available",
		})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	records, err := h.store.GetRecent(limit)
	if err != nil {
		h.logger.Error("failed to list session history", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "history_error",
			Message: "Failed to list session history",
		})
		return
	}

	utils.JSON(w, http.StatusOK, records)
}

func (h *InterviewHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
			Code:    "history_disabled",
			Message: "Session history is not available",
		})
		return
	}

	stats, err := h.store.Stats()
	if err != nil {
		h.logger.Error("failed to compute history stats", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "stats_error",
			Message: "Failed to compute history stats",
		})
		return
	}

	utils.JSON(w, http.StatusOK, stats)
}

func (h *InterviewHandler) writeEngineError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "No session with id " + sessionID,
		})
	case errors.Is(err, interview.ErrSessionCompleted):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "session_completed",
			Message: "Session has already completed",
		})
	case errors.Is(err, interview.ErrNoPendingQuestion):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "no_pending_question",
			Message: "There is no unanswered question to submit to",
		})
	default:
		h.logger.Error("interview engine error", zap.Error(err), zap.String("session_id", sessionID))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Internal error",
		})
	}
}
