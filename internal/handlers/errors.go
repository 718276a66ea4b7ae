package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/response"
	"github.com/gravadigital/tallywatch-api/internal/validation"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case validation.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, submission.ErrStationNotFound),
		errors.Is(err, submission.ErrCandidateNotFound),
		errors.Is(err, submission.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, submission.ErrDuplicatePrimary),
		errors.Is(err, submission.ErrResultExists),
		errors.Is(err, submission.ErrInvalidTransition),
		errors.Is(err, submission.ErrNoResult),
		errors.Is(err, submission.ErrReviewClosed):
		return http.StatusConflict
	case errors.Is(err, submission.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Storage failures are
// logged and hidden from the client.
func respondError(c *gin.Context, log *log.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err, "route", c.FullPath(), "request_id", c.GetString("request_id"))
		response.InternalServerError(c, "internal server error")
		return
	}

	log.Debug("request refused", "status", status, "error", err)
	refusals[status](c, err.Error())
}

var refusals = map[int]func(*gin.Context, string){
	http.StatusBadRequest: response.BadRequestError,
	http.StatusForbidden:  response.ForbiddenError,
	http.StatusNotFound:   response.NotFoundError,
	http.StatusConflict:   response.ConflictError,
}
