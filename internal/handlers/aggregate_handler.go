package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/tallywatch-api/internal/auth"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/response"
	"github.com/gravadigital/tallywatch-api/internal/services"
	"github.com/gravadigital/tallywatch-api/internal/validation"
)

type AggregateHandler struct {
	aggregations *services.AggregationService
	log          *log.Logger
}

func NewAggregateHandler(aggregations *services.AggregationService) *AggregateHandler {
	return &AggregateHandler{
		aggregations: aggregations,
		log:          logger.Handler("aggregate_handler"),
	}
}

// GetAggregate handles GET /api/results/aggregate
func (h *AggregateHandler) GetAggregate(c *gin.Context) {
	req, err := aggregateRequest(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out, err := h.aggregations.Aggregate(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", out)
}

// ListCandidates handles GET /api/candidates
func (h *AggregateHandler) ListCandidates(c *gin.Context) {
	req, err := aggregateRequest(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ballot, sc, err := h.aggregations.Ballot(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", gin.H{
		"position":   req.Position,
		"scope":      sc,
		"candidates": ballot,
	})
}

func aggregateRequest(c *gin.Context) (services.AggregateRequest, error) {
	req := services.AggregateRequest{
		Caller:   auth.CallerFrom(c),
		Position: c.Query("position"),
	}
	if req.Position == "" {
		return req, validation.Errorf("position", "is required")
	}

	f, err := parseFilter(c)
	if err != nil {
		return req, err
	}
	req.Filter = f
	return req, nil
}

func parseFilter(c *gin.Context) (scope.Filter, error) {
	var f scope.Filter
	var err error

	ids := []struct {
		name string
		dst  **uint
	}{
		{"county_id", &f.CountyID},
		{"constituency_id", &f.ConstituencyID},
		{"ward_id", &f.WardID},
		{"polling_station_id", &f.PollingStationID},
		{"location_id", &f.LocationID},
	}
	for _, id := range ids {
		if *id.dst, err = validation.ParseOptionalID(c.Query(id.name), id.name); err != nil {
			return f, err
		}
	}

	if raw := c.Query("level"); raw != "" {
		if f.Level, err = scope.ParseLevel(raw); err != nil {
			return f, validation.Errorf("level", "must be one of national, county, constituency, ward, polling_station")
		}
	}
	return f, nil
}
