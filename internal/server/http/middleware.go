package httpserver

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/guard"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/session"
)

// RequestLogger logs one line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// no bodies or cookies, metadata only
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", c.ClientIP()),
		)
	}
}

// Recoverer turns panics into a generic internal outcome.
func Recoverer(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, Outcome{
					Success: false,
					Kind:    errs.KindInternal.String(),
					Message: messageOf(nil, errs.KindInternal),
				})
			}
		}()
		c.Next()
	}
}

// identify resolves the session cookie into an identity on the request context.
// A cookie that does not resolve is cleared and the request continues anonymously.
func (h *Handler) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(h.cookie.Name)
		if err != nil || cookie == "" {
			c.Next()
			return
		}
		id, token, err := h.sessions.Resolve(c.Request.Context(), cookie)
		if err != nil {
			h.clearCookie(c)
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(session.WithIdentity(c.Request.Context(), id, token))
		c.Next()
	}
}

// requireAuth sends anonymous callers to the login page.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := guard.Authenticated(c.Request.Context(), guard.Request{Identity: identityOf(c)}); err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := guard.AdminOnly(c.Request.Context(), guard.Request{Identity: identityOf(c)}); err != nil {
			h.fail(c, err)
			return
		}
		c.Next()
	}
}

func identityOf(c *gin.Context) *model.Identity {
	id, ok := session.IdentityFromCtx(c.Request.Context())
	if !ok {
		return nil
	}
	return &id
}

func (h *Handler) setCookie(c *gin.Context, value string, exp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, int(time.Until(exp).Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
