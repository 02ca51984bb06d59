package httpserver

import (
	"github.com/gin-gonic/gin"

	"github.com/and161185/notekeeper/internal/convert"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

// adminNotes lists every note, optionally narrowed by ?userId= and ?search=.
func (h *Handler) adminNotes(c *gin.Context) {
	owner, err := convert.ParseOptionalID(c.Query("userId"))
	if err != nil {
		h.fail(c, errs.Validation("Invalid user id."))
		return
	}
	notes, err := h.notes.List(c.Request.Context(), identityOf(c), model.NoteFilter{
		OwnerID: owner,
		Search:  c.Query("search"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, "", convert.ToNoteViews(notes))
}

func (h *Handler) topAuthors(c *gin.Context) {
	stats, err := h.notes.TopAuthors(c.Request.Context(), identityOf(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, "", convert.ToAuthorViews(stats))
}
