package httpserver

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/convert"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/session"
)

type registerRequest struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`
	ProfilePic      string `form:"profilePic" json:"profilePic"`
	Role            string `form:"role" json:"role"`
}

type loginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type profileRequest struct {
	Username           string  `form:"username" json:"username"`
	Email              string  `form:"email" json:"email"`
	CurrentPassword    string  `form:"currentPassword" json:"currentPassword"`
	NewPassword        string  `form:"newPassword" json:"newPassword"`
	ConfirmNewPassword string  `form:"confirmNewPassword" json:"confirmNewPassword"`
	ProfilePic         *string `form:"profilePic" json:"profilePic"`
}

func badForm() error { return errs.Validation("Invalid form data.") }

func (h *Handler) home(c *gin.Context) {
	var data any
	if id := identityOf(c); id != nil {
		data = convert.ToIdentityView(*id)
	}
	ok(c, "", data)
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badForm())
		return
	}
	u, err := h.auth.Register(c.Request.Context(), model.Registration{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		ProfilePic:      req.ProfilePic,
		Role:            req.Role,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info("user registered", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	seeOther(c, "/login")
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badForm())
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	// drop any session the browser already holds
	if old, err := c.Cookie(h.cookie.Name); err == nil && old != "" {
		if err := h.sessions.Destroy(c.Request.Context(), old); err != nil {
			h.log.Warn("destroy previous session", zap.Error(err))
		}
	}
	cookie, exp, err := h.sessions.Start(c.Request.Context(), res.Identity)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setCookie(c, cookie, exp)
	seeOther(c, res.Landing)
}

func (h *Handler) logout(c *gin.Context) {
	if cookie, err := c.Cookie(h.cookie.Name); err == nil && cookie != "" {
		if err := h.sessions.Destroy(c.Request.Context(), cookie); err != nil {
			h.log.Warn("destroy session", zap.Error(err))
		}
	}
	h.clearCookie(c)
	seeOther(c, "/")
}

// loginForm and registerForm answer the GET side of the forms with an empty outcome.
func (h *Handler) loginForm(c *gin.Context) { ok(c, "", nil) }
func (h *Handler) registerForm(c *gin.Context) { ok(c, "", nil) }

func (h *Handler) dashboard(c *gin.Context) {
	ok(c, "", convert.ToIdentityView(*identityOf(c)))
}

func (h *Handler) profile(c *gin.Context) {
	u, err := h.auth.Profile(c.Request.Context(), *identityOf(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, "", convert.ToUserView(u))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badForm())
		return
	}
	u, err := h.applyProfile(c, model.ProfileUpdate{
		Username:           req.Username,
		Email:              req.Email,
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
		ProfilePic:         nonEmpty(req.ProfilePic),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, "Profile updated successfully!", convert.ToUserView(u))
}

// editProfile is the short form: no password fields, back to the dashboard.
func (h *Handler) editProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badForm())
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" {
		h.fail(c, errs.Validation("All fields are required."))
		return
	}
	if _, err := h.applyProfile(c, model.ProfileUpdate{
		Username:   req.Username,
		Email:      req.Email,
		ProfilePic: nonEmpty(req.ProfilePic),
	}); err != nil {
		h.fail(c, err)
		return
	}
	seeOther(c, "/dashboard")
}

// applyProfile saves the edit and swaps the session snapshot for the fresh one.
// The edit is already stored when the refresh runs, so a session that vanished
// in between only drops the cookie.
func (h *Handler) applyProfile(c *gin.Context, upd model.ProfileUpdate) (*model.User, error) {
	ctx := c.Request.Context()
	fresh, u, err := h.auth.UpdateProfile(ctx, *identityOf(c), upd)
	if err != nil {
		return nil, err
	}
	token, _ := session.TokenFromCtx(ctx)
	if err := h.sessions.Refresh(ctx, token, fresh); err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		h.log.Warn("session gone before refresh", zap.String("user_id", fresh.UserID.String()))
		h.clearCookie(c)
		return u, nil
	}
	c.Request = c.Request.WithContext(session.WithIdentity(ctx, fresh, token))
	return u, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
