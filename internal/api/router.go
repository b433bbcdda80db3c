package api

import (
	"net/http"

	"github.com/aki/journal-api/internal/api/handlers"
	"github.com/aki/journal-api/internal/api/middleware"
	"github.com/aki/journal-api/internal/config"
	"github.com/aki/journal-api/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health checks
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Journal API is running"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	journalHandler := handlers.NewJournalHandler(services.Journal)
	attachmentHandler := handlers.NewAttachmentHandler(services.Attachment)
	adminHandler := handlers.NewAdminHandler(services.Admin, services.Auth, cfg.AdminCookieMaxAge)
	userHandler := handlers.NewUserHandler(services.User, services.Auth)

	// Public auth routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up", authHandler.SignUp)
		r.Post("/sign-in", authHandler.SignIn)
		r.Post("/sign-out", authHandler.SignOut)
		// Link-token confirmations; the token is the credential
		r.Post("/reset-password", authHandler.ResetPassword)
		r.Get("/verify-email", authHandler.VerifyEmail)
	})

	// One-time bootstrap; self-gates on the absence of any admin
	r.Post("/bootstrap-admin", adminHandler.BootstrapAdmin)

	// Admin panel
	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", adminHandler.LoginPage)
		r.Post("/auth", adminHandler.Authenticate)
		r.Post("/logout", adminHandler.Logout)
		r.Get("/", adminHandler.Dashboard)

		// Admin-trust JSON endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(services.Auth, services.Admin))
			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users", adminHandler.CreateUser)
			r.Delete("/users/{id}", adminHandler.DeleteUser)
		})
	})

	// User-trust routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(services.Auth))

		r.Route("/journal", func(r chi.Router) {
			r.Get("/", journalHandler.List)
			r.Post("/", journalHandler.Create)
			// /journal/search must come before /journal/{id}
			r.Get("/search", journalHandler.Search)
			r.Get("/{id}", journalHandler.Get)
			r.Put("/{id}", journalHandler.Update)
			r.Delete("/{id}", journalHandler.Delete)
			r.Post("/{journalId}/attachments", attachmentHandler.Upload)
		})

		r.Route("/attachments", func(r chi.Router) {
			r.Get("/{id}", attachmentHandler.Get)
			r.Delete("/{id}", attachmentHandler.Delete)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/profile", userHandler.GetProfile)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Post("/change-password", userHandler.ChangePassword)
			r.Post("/request-password-reset", userHandler.RequestPasswordReset)
			r.Post("/resend-verification", userHandler.ResendVerification)
			r.Delete("/account", userHandler.DeleteAccount)
		})
	})

	return r
}
