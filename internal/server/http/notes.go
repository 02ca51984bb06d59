package httpserver

import (
	"github.com/gin-gonic/gin"

	"github.com/and161185/notekeeper/internal/convert"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

type noteRequest struct {
	Title   string `form:"title" json:"title"`
	Content string `form:"content" json:"content"`
}

// listNotes is the caller's own page, admins included. Cross-user listing lives under /admin/notes.
func (h *Handler) listNotes(c *gin.Context) {
	who := identityOf(c)
	notes, err := h.notes.List(c.Request.Context(), who, model.NoteFilter{OwnerID: &who.UserID})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, "", convert.ToNoteViews(notes))
}

func (h *Handler) createNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badForm())
		return
	}
	if _, err := h.notes.Create(c.Request.Context(), identityOf(c), req.Title, req.Content); err != nil {
		h.fail(c, err)
		return
	}
	seeOther(c, "/notes")
}

func (h *Handler) editNoteForm(c *gin.Context) {
	id, err := convert.ParseID(c.Param("id"))
	if err != nil {
		// a malformed id is indistinguishable from a missing note
		h.fail(c, errs.ErrNotFoundOrForbidden)
		return
	}
	n, err := h.notes.Get(c.Request.Context(), identityOf(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, "", convert.ToNoteView(n))
}

func (h *Handler) updateNote(c *gin.Context) {
	id, err := convert.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, errs.ErrNotFoundOrForbidden)
		return
	}
	var req noteRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badForm())
		return
	}
	if _, err := h.notes.Update(c.Request.Context(), identityOf(c), id, req.Title, req.Content); err != nil {
		h.fail(c, err)
		return
	}
	seeOther(c, "/notes")
}

// deleteNote serves both the owner route and the admin route; the service
// applies the owner-or-admin rule either way.
func (h *Handler) deleteNote(c *gin.Context) {
	id, err := convert.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, errs.ErrNotFoundOrForbidden)
		return
	}
	if err := h.notes.Delete(c.Request.Context(), identityOf(c), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, "Note deleted successfully", nil)
}
