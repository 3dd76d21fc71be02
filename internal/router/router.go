package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"precisionquiz-backend/internal/handlers"
	"precisionquiz-backend/internal/middleware"
	"precisionquiz-backend/internal/websocket"
)

func New(
	sessionAuth *middleware.SessionAuth,
	uploadLimiter *middleware.RateLimiter,
	contentHandler *handlers.ContentHandler,
	quizHandler *handlers.QuizHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", contentHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/formats", contentHandler.SupportedFormats)
		r.Post("/sessions", quizHandler.CreateSession)

		// Token is passed as a query param; browsers cannot set headers on upgrade
		r.Get("/ws", wsHub.HandleWebSocket)

		r.Route("/quiz", func(r chi.Router) {
			r.Use(sessionAuth.Middleware)

			r.Get("/", quizHandler.Get)
			r.With(uploadLimiter.Middleware).Post("/upload", quizHandler.Upload)
			r.Post("/answer", quizHandler.Answer)
			r.Post("/next", quizHandler.Next)
			r.Get("/result", quizHandler.Result)
			r.Post("/restart", quizHandler.Restart)

			r.Route("/export", func(r chi.Router) {
				r.Get("/questions.csv", quizHandler.ExportQuestionsCSV)
				r.Get("/questions.pdf", quizHandler.ExportQuestionsPDF)
				r.Get("/results.csv", quizHandler.ExportResultsCSV)
				r.Get("/results.pdf", quizHandler.ExportResultsPDF)
			})
		})
	})

	return r
}
