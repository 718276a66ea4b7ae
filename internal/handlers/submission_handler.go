package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/tallywatch-api/internal/auth"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/response"
	"github.com/gravadigital/tallywatch-api/internal/services"
	"github.com/gravadigital/tallywatch-api/internal/validation"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling files to disk.
const multipartMemory = 8 << 20

type SubmissionHandler struct {
	submissions *services.SubmissionService
	reviews     *services.ReviewService
	limits      services.UploadLimits
	log         *log.Logger
}

func NewSubmissionHandler(submissions *services.SubmissionService, reviews *services.ReviewService, limits services.UploadLimits) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		reviews:     reviews,
		limits:      limits,
		log:         logger.Handler("submission_handler"),
	}
}

// CreateSubmission handles POST /api/submissions
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	if h.limits.MaxPhotos > 0 && h.limits.MaxFileSize > 0 {
		limit := int64(h.limits.MaxPhotos)*h.limits.MaxFileSize + multipartMemory
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		response.BadRequestError(c, "request must be a multipart form: "+err.Error())
		return
	}
	defer c.Request.MultipartForm.RemoveAll()

	req, err := h.parseSubmitRequest(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Debug("Processing submission",
		"polling_station_id", req.PollingStationID,
		"candidate_id", req.CandidateID,
		"type", req.SubmissionType,
		"photos", len(req.Photos))

	out, err := h.submissions.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "submission received", out)
}

func (h *SubmissionHandler) parseSubmitRequest(c *gin.Context) (services.SubmitRequest, error) {
	req := services.SubmitRequest{Caller: auth.CallerFrom(c)}
	var err error

	if req.PollingStationID, err = validation.ParseID(c.PostForm("polling_station_id"), "polling_station_id"); err != nil {
		return req, err
	}
	if req.CandidateID, err = validation.ParseID(c.PostForm("candidate_id"), "candidate_id"); err != nil {
		return req, err
	}

	kind, err := submission.ParseType(c.DefaultPostForm("submission_type", string(submission.TypePrimary)))
	if err != nil {
		return req, validation.Errorf("submission_type", "must be one of primary, backup, public")
	}
	req.SubmissionType = kind

	if req.SubmittedLat, err = validation.ParseOptionalFloat(c.PostForm("submitted_lat"), "submitted_lat"); err != nil {
		return req, err
	}
	if req.SubmittedLng, err = validation.ParseOptionalFloat(c.PostForm("submitted_lng"), "submitted_lng"); err != nil {
		return req, err
	}
	req.DeviceID = c.PostForm("device_id")

	if raw := c.PostForm("captured_at"); raw != "" {
		capturedAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return req, validation.Errorf("captured_at", "must be an RFC3339 timestamp")
		}
		capturedAt = capturedAt.UTC()
		req.CapturedAt = &capturedAt
	}

	files := c.Request.MultipartForm.File["photos"]
	types := c.Request.MultipartForm.Value["photo_types"]
	if len(files) != len(types) {
		return req, validation.Errorf("photo_types", "must list one type per photo (%d photos, %d types)", len(files), len(types))
	}

	req.Photos = make([]services.PhotoUpload, 0, len(files))
	for i, fh := range files {
		req.Photos = append(req.Photos, services.PhotoUpload{
			PhotoType:   types[i],
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        openPart(fh),
		})
	}
	return req, nil
}

func openPart(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus handles PATCH /api/submissions/:id/status
func (h *SubmissionHandler) SetStatus(c *gin.Context) {
	id, err := validation.ParseUUID(c.Param("id"), "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	sub, err := h.reviews.SetStatus(c.Request.Context(), auth.CallerFrom(c), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "status updated", gin.H{
		"submission_id": sub.ID,
		"status":        sub.Status,
		"verified_at":   sub.VerifiedAt,
	})
}
