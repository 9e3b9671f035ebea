package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Machine-readable error codes carried in every error response.
const (
	CodeBookNotFound      = "BOOK_NOT_FOUND"
	CodeAuthorNotFound    = "AUTHOR_NOT_FOUND"
	CodeGenreNotFound     = "GENRE_NOT_FOUND"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeConflict          = "CONFLICT"
	CodeExternalService   = "EXTERNAL_SERVICE_UNAVAILABLE"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Path    string `json:"path,omitempty"`    // request path that produced the error
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// --- Error Response Helpers ---

// respondValidationError sends a 400 Bad Request response with the
// validation error code.
func respondValidationError(c *gin.Context, message string, details any) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   message,
		Code:    CodeValidationError,
		Path:    c.Request.URL.Path,
		Details: details,
	})
}

// respondNotFound sends a 404 Not Found response with a resource-specific code.
func respondNotFound(c *gin.Context, resource, code string) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error: resource + " not found",
		Code:  code,
		Path:  c.Request.URL.Path,
	})
}

// respondConflict sends a 409 Conflict response.
func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{
		Error: message,
		Code:  CodeConflict,
		Path:  c.Request.URL.Path,
	})
}

// respondExternalUnavailable sends a 502 Bad Gateway response for upstream
// metadata failures.
func respondExternalUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusBadGateway, ErrorResponse{
		Error: message,
		Code:  CodeExternalService,
		Path:  c.Request.URL.Path,
	})
}

// respondInternalError logs the error and sends a 500 Internal Server Error
// response. The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  CodeInternalError,
		Path:  c.Request.URL.Path,
	})
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. Returns the parsed ID or responds with a 400 error and
// returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondValidationError(c, "invalid "+paramName, nil)
		return 0, false
	}
	return uint(id), true
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// parsePagination reads limit/offset query parameters, clamping them to
// sane bounds.
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// isNotFound reports whether err is a gorm record-not-found error.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate reports whether err stems from a unique-constraint violation.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
