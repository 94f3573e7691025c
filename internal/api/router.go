package api

import (
	"net/http"

	"github.com/St1cky1/command-center/internal/api/handlers"
	apimw "github.com/St1cky1/command-center/internal/api/middleware"
	"github.com/St1cky1/command-center/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

// Services - сервисы, которые обслуживает REST API
type Services struct {
	Auth        *usecase.AuthService
	Users       *usecase.UserService
	Board       *usecase.BoardService
	Attachments *usecase.AttachmentService
	Reports     *usecase.ReportService
	References  *usecase.ReferenceService
	Voice       *usecase.VoiceService
	History     *usecase.HistoryService
}

func NewRouter(services Services, logger *log.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimw.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	authHandler := handlers.NewAuthHandler(services.Auth, logger)
	userHandler := handlers.NewUserHandler(services.Users, logger)
	boardHandler := handlers.NewBoardHandler(services.Board, services.Attachments, logger)
	dragHandler := handlers.NewDragHandler(services.Board, logger)
	attachmentHandler := handlers.NewAttachmentHandler(services.Attachments, logger)
	reportHandler := handlers.NewReportHandler(services.Reports, logger)
	referenceHandler := handlers.NewReferenceHandler(services.References, logger)
	voiceHandler := handlers.NewVoiceHandler(services.Voice, logger)
	historyHandler := handlers.NewHistoryHandler(services.History, logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", authHandler.SignUp)
			r.Post("/sign-in", authHandler.SignIn)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Все остальное только с сессией
		r.Group(func(r chi.Router) {
			r.Use(apimw.Authenticator(services.Auth, handlers.ErrorWriter(logger)))

			r.Post("/auth/sign-out", authHandler.SignOut)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", userHandler.Me)
				r.Put("/", userHandler.UpdateMe)
				r.Get("/executive", userHandler.Executive)
			})
			r.Route("/assistants", func(r chi.Router) {
				r.Get("/", userHandler.ListAssistants)
				r.Patch("/{id}", userHandler.SetAssistantStatus)
			})

			r.Route("/board", func(r chi.Router) {
				r.Get("/", boardHandler.GetBoard)
				r.Get("/columns", boardHandler.GetColumns)
				r.Route("/drag", func(r chi.Router) {
					r.Get("/", dragHandler.State)
					r.Delete("/", dragHandler.End)
					r.Post("/begin", dragHandler.Begin)
					r.Post("/hover", dragHandler.Hover)
					r.Post("/leave", dragHandler.Leave)
					r.Post("/drop", dragHandler.Drop)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", boardHandler.ListTasks)
				r.Post("/", boardHandler.CreateTask)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", boardHandler.GetTask)
					r.Put("/", boardHandler.UpdateTask)
					r.Delete("/", boardHandler.DeleteTask)
					r.Post("/move", boardHandler.MoveTask)
					r.Post("/reorder", boardHandler.ReorderTask)
					r.Post("/comments", boardHandler.AddComment)
					r.Put("/comments/{commentID}", boardHandler.EditComment)
					r.Delete("/comments/{commentID}", boardHandler.DeleteComment)
					r.Post("/attachments", boardHandler.AttachFile)
					r.Delete("/attachments/{attachmentID}", boardHandler.DetachFile)
					r.Get("/history", historyHandler.TaskHistory)
				})
			})

			r.Post("/voice-tasks", voiceHandler.CreateTask)

			r.Route("/attachments", func(r chi.Router) {
				r.Post("/", attachmentHandler.Upload)
				r.Get("/{id}", attachmentHandler.Get)
				r.Get("/{id}/content", attachmentHandler.Download)
				r.Delete("/{id}", attachmentHandler.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Post("/", reportHandler.Submit)
				r.Get("/", reportHandler.ListTeam)
				r.Get("/mine", reportHandler.ListMine)
			})

			r.Route("/references", func(r chi.Router) {
				r.Get("/", referenceHandler.List)
				r.Post("/", referenceHandler.Create)
				r.Get("/{id}", referenceHandler.Get)
				r.Put("/{id}", referenceHandler.Update)
				r.Delete("/{id}", referenceHandler.Delete)
			})
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)
}
