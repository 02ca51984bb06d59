// Package httpserver exposes the account and note operations over gin.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/service"
)

// Sessions is the part of the session manager the handlers need.
type Sessions interface {
	Start(ctx context.Context, id model.Identity) (string, time.Time, error)
	Resolve(ctx context.Context, cookie string) (model.Identity, string, error)
	Refresh(ctx context.Context, token string, id model.Identity) error
	Destroy(ctx context.Context, cookie string) error
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth     service.AuthService
	notes    service.NoteService
	sessions Sessions
	cookie   CookieConfig
	log      *zap.Logger
}

func NewHandler(auth service.AuthService, notes service.NoteService, sessions Sessions, cookie CookieConfig, log *zap.Logger) *Handler {
	if cookie.Name == "" {
		cookie.Name = "notes_session"
	}
	return &Handler{auth: auth, notes: notes, sessions: sessions, cookie: cookie, log: log}
}

// RegisterRoutes installs middleware and every route on router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(Recoverer(h.log), RequestLogger(h.log), h.identify())

	router.GET("/", h.home)
	router.GET("/register", h.registerForm)
	router.POST("/register", h.register)
	router.GET("/login", h.loginForm)
	router.POST("/login", h.login)
	router.GET("/logout", h.logout)

	authed := router.Group("")
	authed.Use(requireAuth())
	{
		authed.GET("/dashboard", h.dashboard)
		authed.GET("/users/profile", h.profile)
		authed.POST("/users/profile", h.updateProfile)
		authed.POST("/edit-profile", h.editProfile)

		authed.GET("/notes", h.listNotes)
		authed.POST("/notes", h.createNote)
		authed.GET("/notes/:id/edit", h.editNoteForm)
		authed.POST("/notes/:id/edit", h.updateNote)
		authed.DELETE("/notes/:id", h.deleteNote)
	}

	admin := router.Group("/admin")
	admin.Use(requireAuth(), h.requireAdmin())
	{
		admin.GET("/notes", h.adminNotes)
		admin.DELETE("/delete-note/:id", h.deleteNote)
		admin.GET("/top-authors", h.topAuthors)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Outcome{Success: false, Kind: "not_found", Message: "Page not found"})
	})
}
