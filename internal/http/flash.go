package http

import (
	"encoding/gob"

	"github.com/gin-gonic/gin"

	"github.com/masonr9/CSC400Project-sub000/internal/auth"
)

const sessionKeyFlash = "flash"

// Flash is a one-shot message stored in the session after a workflow action.
// The handler puts it, redirects, and the next rendered page pops it.
// Workflow services never touch the session; the message text they return is
// carried here.
type Flash struct {
	Success bool
	Message string
	Color   string
}

func init() {
	gob.Register(Flash{})
}

// flashSuccess stores a green one-shot message for the next page load.
func flashSuccess(c *gin.Context, sm *auth.SessionManager, message string) {
	putFlash(c, sm, Flash{Success: true, Message: message, Color: "green"})
}

// flashError stores a red one-shot message for the next page load.
func flashError(c *gin.Context, sm *auth.SessionManager, message string) {
	putFlash(c, sm, Flash{Success: false, Message: message, Color: "red"})
}

func putFlash(c *gin.Context, sm *auth.SessionManager, f Flash) {
	if sm == nil {
		return
	}
	sm.Put(c.Request.Context(), sessionKeyFlash, f)
}

// popFlash removes and returns the pending flash, nil when there is none.
func popFlash(c *gin.Context, sm *auth.SessionManager) *Flash {
	if sm == nil {
		return nil
	}
	v := sm.Pop(c.Request.Context(), sessionKeyFlash)
	f, ok := v.(Flash)
	if !ok {
		return nil
	}
	return &f
}
