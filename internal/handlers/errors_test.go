package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/validation"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err     error
		status  int
		message string
	}{
		{validation.Errorf("position", "is required"), http.StatusBadRequest, "position is required"},
		{fmt.Errorf("lookup: %w", submission.ErrStationNotFound), http.StatusNotFound, "lookup: polling station not found"},
		{submission.ErrNoResult, http.StatusConflict, submission.ErrNoResult.Error()},
		{submission.ErrReviewClosed, http.StatusConflict, submission.ErrReviewClosed.Error()},
		{submission.ErrForbidden, http.StatusForbidden, submission.ErrForbidden.Error()},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, logger.Handler("test"), tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		env := decode(t, w, nil)
		assert.False(t, env.Success)
		assert.Equal(t, tc.status, env.Code)
		assert.Equal(t, tc.message, env.Error)
	}
}
