package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/errs"
)

// Outcome is the body of every non-redirect response.
type Outcome struct {
	Success  bool   `json:"success"`
	Kind     string `json:"kind,omitempty"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// statusOf is the single place where error kinds become HTTP statuses.
func statusOf(k errs.Kind) int {
	switch k {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindInvalidCredentials, errs.KindUnauthenticated:
		return http.StatusUnauthorized
	case errs.KindAccountLocked:
		return http.StatusLocked
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindNotFoundOrForbidden, errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// messageOf picks the user-facing text. Only validation errors carry their own
// message; every other kind gets a fixed text so no internals leak.
func messageOf(err error, k errs.Kind) string {
	switch k {
	case errs.KindValidation:
		return err.Error()
	case errs.KindInvalidCredentials:
		return "Invalid email or password."
	case errs.KindAccountLocked:
		return "Account is locked due to multiple failed login attempts."
	case errs.KindUnauthenticated:
		return "Please log in."
	case errs.KindForbidden:
		return "Access denied."
	case errs.KindNotFoundOrForbidden:
		return "Note not found or you don't have permission"
	case errs.KindNotFound:
		return "Not found."
	case errs.KindConflict:
		return "Email is already registered."
	default:
		return "Something went wrong. Please try again."
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	k := errs.KindOf(err)
	if k == errs.KindInternal {
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(statusOf(k), Outcome{Success: false, Kind: k.String(), Message: messageOf(err, k)})
}

func ok(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, Outcome{Success: true, Message: msg, Data: data})
}

func seeOther(c *gin.Context, path string) {
	c.Redirect(http.StatusSeeOther, path)
}
