package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/mediator"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Ctx(c.Request.Context()).Error().Err(err).Str("context", context).Msg("internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondLoadFailure maps a failed mediator load to an error response whose
// code is the failure kind.
func respondLoadFailure(c *gin.Context, result mediator.Result) {
	status := http.StatusInternalServerError
	switch result.Kind {
	case mediator.KindNetwork:
		status = http.StatusServiceUnavailable
	case mediator.KindProtocol:
		status = http.StatusBadGateway
	case mediator.KindCancelled:
		status = http.StatusRequestTimeout
	}
	msg := result.Signal.String() + " failed"
	if result.Err != nil {
		msg += ": " + result.Err.Error()
	}
	log.Ctx(c.Request.Context()).Warn().Err(result.Err).Str("kind", string(result.Kind)).Msg("load failed")
	c.JSON(status, ErrorResponse{Error: msg, Code: string(result.Kind)})
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseLabelParam extracts and validates a list label from URL parameters.
// Returns the label or responds with a 404 error and returns "", false.
func parseLabelParam(c *gin.Context, paramName string) (entities.Label, bool) {
	label, err := entities.ParseLabel(c.Param(paramName))
	if err != nil {
		respondNotFound(c, "list "+strconv.Quote(c.Param(paramName)))
		return "", false
	}
	return label, true
}

// parseOptionalLabelQuery reads an optional label filter from query parameters.
// An absent value yields "" which matches every list.
func parseOptionalLabelQuery(c *gin.Context, paramName string) (entities.Label, bool) {
	raw := c.Query(paramName)
	if raw == "" {
		return "", true
	}
	label, err := entities.ParseLabel(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return "", false
	}
	return label, true
}

// parsePagination reads limit and offset query parameters, clamping limit to
// maxPageLimit. Responds with a 400 error and returns false on invalid input.
func parsePagination(c *gin.Context) (limit, offset int, ok bool) {
	limit = defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondBadRequest(c, "invalid limit")
			return 0, 0, false
		}
		limit = min(v, maxPageLimit)
	}
	if raw := c.Query("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			respondBadRequest(c, "invalid offset")
			return 0, 0, false
		}
		offset = v
	}
	return limit, offset, true
}

// isNotFound reports whether err means the requested row does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, entities.ErrItemNotFound)
}
