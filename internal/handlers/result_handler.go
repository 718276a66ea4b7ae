package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/tallywatch-api/internal/auth"
	"github.com/gravadigital/tallywatch-api/internal/domain/verification"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/response"
	"github.com/gravadigital/tallywatch-api/internal/services"
	"github.com/gravadigital/tallywatch-api/internal/validation"
)

type ResultHandler struct {
	results *services.ResultService
	log     *log.Logger
}

func NewResultHandler(results *services.ResultService) *ResultHandler {
	return &ResultHandler{
		results: results,
		log:     logger.Handler("result_handler"),
	}
}

// Counts are pointers so that an explicit zero is told apart from a
// missing field.
type RecordResultRequest struct {
	SubmissionID     string                 `json:"submission_id" binding:"required"`
	Position         string                 `json:"position" binding:"required"`
	RegisteredVoters *int                   `json:"registered_voters" binding:"required"`
	TotalVotesCast   *int                   `json:"total_votes_cast" binding:"required"`
	ValidVotes       *int                   `json:"valid_votes" binding:"required"`
	RejectedVotes    *int                   `json:"rejected_votes" binding:"required"`
	CandidateVotes   []CandidateVoteRequest `json:"candidate_votes" binding:"dive"`
}

type CandidateVoteRequest struct {
	CandidateName string `json:"candidate_name" binding:"required"`
	PartyName     string `json:"party_name"`
	Votes         *int   `json:"votes" binding:"required"`
}

// RecordResult handles POST /api/results
func (h *ResultHandler) RecordResult(c *gin.Context) {
	var req RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	id, err := validation.ParseUUID(req.SubmissionID, "submission_id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	counts := verification.Counts{
		RegisteredVoters: *req.RegisteredVoters,
		TotalVotesCast:   *req.TotalVotesCast,
		ValidVotes:       *req.ValidVotes,
		RejectedVotes:    *req.RejectedVotes,
		Candidates:       make([]verification.CandidateCount, 0, len(req.CandidateVotes)),
	}
	for _, cv := range req.CandidateVotes {
		counts.Candidates = append(counts.Candidates, verification.CandidateCount{
			CandidateName: cv.CandidateName,
			PartyName:     cv.PartyName,
			Votes:         *cv.Votes,
		})
	}

	out, err := h.results.Record(c.Request.Context(), services.RecordRequest{
		Caller:       auth.CallerFrom(c),
		SubmissionID: id,
		Position:     req.Position,
		Counts:       counts,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := "result recorded"
	if !out.Valid {
		message = "result recorded with validation errors"
	}
	response.SuccessResponse(c, http.StatusCreated, message, out)
}
