package http

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/masonr9/CSC400Project-sub000/internal/auth"
)

const maxPageSize = 100

// GetUserID returns the authenticated user's ID from the request context.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// PaginatedResponse is the JSON envelope for list endpoints.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
}

// respondInternalError logs the cause and answers with a generic 500. The
// underlying error never reaches the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// parseIDParam reads an unsigned integer path parameter. On failure it has
// already written the 400 response; callers just return.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads page/limit query parameters, clamps them to sane
// bounds and returns limit, offset and the 1-based page number.
func parsePagination(c *gin.Context, defaultLimit int) (limit, offset, page int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 || limit > maxPageSize {
		limit = defaultLimit
	}
	return limit, (page - 1) * limit, page
}

// renderPage renders an HTML template with the CSRF field, any pending
// flash message and the staff flag injected, so handlers don't repeat that
// plumbing.
func renderPage(c *gin.Context, sm *auth.SessionManager, status int, name string, data gin.H) {
	data["CSRFField"] = template.HTML(auth.CSRFTokenField(c))
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = popFlash(c, sm)
	}
	if _, ok := data["IsStaff"]; !ok {
		data["IsStaff"] = auth.GetUserRole(c).IsStaff()
	}
	c.HTML(status, name, data)
}

// wantsJSON reports whether the client asked for JSON instead of a rendered
// page, via the Accept header or ?format=json.
func wantsJSON(c *gin.Context) bool {
	if c.GetHeader("Accept") == "application/json" {
		return true
	}
	return c.Query("format") == "json"
}
