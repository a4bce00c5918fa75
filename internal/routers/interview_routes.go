package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mockmate/interviewer/internal/handlers"
	"mockmate/interviewer/internal/middleware"
	"mockmate/interviewer/internal/models"
	"mockmate/interviewer/internal/ws"
)

// InterviewRoutes mounts the session API. Extra middlewares (auth) apply to
// the whole group.
func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, hub *ws.Hub, middlewares ...func(http.Handler) http.Handler) {
	router.Route("/api/v1/interview", func(r chi.Router) {
		for _, mw := range middlewares {
			r.Use(mw)
		}

		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/start", interviewHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/{sessionID}/answer", interviewHandler.AnswerHandler)
		r.Post("/{sessionID}/end", interviewHandler.EndHandler)
		r.Get("/history", interviewHandler.HistoryHandler)
		r.Get("/history/stats", interviewHandler.StatsHandler)
		r.Get("/{sessionID}", interviewHandler.GetHandler)

		if hub != nil {
			r.Get("/ws", hub.ServeWS)
		}
	})
}
