package handlers

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aki/journal-api/internal/api/middleware"
	"github.com/aki/journal-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

//go:embed templates/login.html templates/dashboard.html
var adminTemplates embed.FS

type AdminHandler struct {
	adminService *service.AdminService
	authService  *service.AuthService
	cookieMaxAge int
}

func NewAdminHandler(adminService *service.AdminService, authService *service.AuthService, cookieMaxAge int) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		authService:  authService,
		cookieMaxAge: cookieMaxAge,
	}
}

type AdminAuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminCreateUserRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required,min=1"`
	IsAdmin bool   `json:"isAdmin"`
}

type BootstrapAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1"`
}

func (h *AdminHandler) serveTemplate(w http.ResponseWriter, name string) {
	data, err := adminTemplates.ReadFile("templates/" + name)
	if err != nil {
		log.Printf("ERROR [handlers.Admin] missing template %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// LoginPage serves the admin panel login form. Public by necessity.
func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.serveTemplate(w, "login.html")
}

// Authenticate is the admin panel's own login endpoint. On success it issues
// the unsigned admin_session cookie: base64 JSON, no signature. This is the
// panel's deliberately weaker legacy channel.
func (h *AdminHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AdminAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	}

	user, err := h.authService.AdminAuthenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials or insufficient permissions")
			return
		}
		log.Printf("ERROR [handlers.Admin] authentication failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	payload, err := json.Marshal(map[string]string{
		"userId": user.ID.String(),
		"email":  user.Email,
		"name":   user.Name,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    base64.StdEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   h.cookieMaxAge,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": userResponse(user)})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Dashboard serves the admin panel HTML. A parseable admin_session cookie is
// the only gate here; the JSON endpoints it calls re-check admin trust.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ParseAdminCookie(r); !ok {
		http.Redirect(w, r, "/admin/login", http.StatusFound)
		return
	}
	h.serveTemplate(w, "dashboard.html")
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		log.Printf("ERROR [handlers.Admin] listing users failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req AdminCreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and name are required")
		return
	}

	user, err := h.adminService.CreateUser(r.Context(), service.CreateUserInput{
		Email:   req.Email,
		Name:    req.Name,
		IsAdmin: req.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			writeError(w, http.StatusBadRequest, "User with this email already exists")
			return
		}
		log.Printf("ERROR [handlers.Admin] user creation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, userResponse(user))
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("ERROR [handlers.Admin] user deletion failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// BootstrapAdmin is public but self-gates: it only succeeds while no admin
// exists at all.
func (h *AdminHandler) BootstrapAdmin(w http.ResponseWriter, r *http.Request) {
	var req BootstrapAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and name are required")
		return
	}

	user, err := h.adminService.BootstrapAdmin(r.Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrAdminExists) {
			writeError(w, http.StatusConflict, "An admin user already exists")
			return
		}
		log.Printf("ERROR [handlers.Admin] bootstrap failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create admin user")
		return
	}

	writeJSON(w, http.StatusCreated, userResponse(user))
}
