package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pnrdesk-service/internal/domain/repository"
	"pnrdesk-service/internal/usecase"
	"pnrdesk-service/pkg/logger"
	"pnrdesk-service/pkg/pnr"
)

// ParseUseCase is the slice of ParseService the handler needs
type ParseUseCase interface {
	Parse(ctx context.Context, req usecase.ParseRequest) (*usecase.ParseOutcome, error)
}

// PNRHandler exposes the parser over HTTP
type PNRHandler struct {
	parseService ParseUseCase
	tickets      repository.TicketRepository
	logger       logger.Logger
}

// NewPNRHandler creates a new PNR handler
func NewPNRHandler(parseService ParseUseCase, tickets repository.TicketRepository, logger logger.Logger) *PNRHandler {
	return &PNRHandler{
		parseService: parseService,
		tickets:      tickets,
		logger:       logger,
	}
}

// Register mounts the PNR routes on the given group
func (h *PNRHandler) Register(router *gin.RouterGroup) {
	router.POST("/parse", h.parse)
	router.POST("/export", h.export)
	router.GET("/records/:pnr", h.records)
}

func (h *PNRHandler) parse(c *gin.Context) {
	var req usecase.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	req.RequestID = uuid.NewString()

	outcome, err := h.parseService.Parse(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusForParseError(err), gin.H{
			"success":    false,
			"error":      err.Error(),
			"request_id": req.RequestID,
		})
		return
	}

	resp := gin.H{
		"success":     true,
		"parsed_data": outcome.Parsed,
		"warnings":    outcome.Warnings,
		"request_id":  req.RequestID,
	}
	if req.SaveToDatabase {
		resp["saved"] = outcome.Saved
		if outcome.SaveError != "" {
			resp["save_error"] = outcome.SaveError
		}
	}
	c.JSON(http.StatusOK, resp)
}

// export parses the payload and returns the plain-text rendition
func (h *PNRHandler) export(c *gin.Context) {
	var req usecase.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	req.SaveToDatabase = false
	req.RequestID = uuid.NewString()

	outcome, err := h.parseService.Parse(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusForParseError(err), gin.H{"success": false, "error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+outcome.Parsed.Header.PNR+".txt")
	c.String(http.StatusOK, outcome.Parsed.Summary())
}

// records returns every stored record for a record locator
func (h *PNRHandler) records(c *gin.Context) {
	if h.tickets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "ticket store not configured"})
		return
	}

	records, err := h.tickets.FindByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		h.logger.Error("Failed to look up ticket records", "pnr", c.Param("pnr"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "no records found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "records": records})
}

func statusForParseError(err error) int {
	var emptyErr *pnr.EmptyInputError
	var gdsErr *pnr.UnsupportedGDSError
	var headerErr *pnr.HeaderNotFoundError

	switch {
	case errors.As(err, &emptyErr), errors.As(err, &gdsErr):
		return http.StatusBadRequest
	case errors.As(err, &headerErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
