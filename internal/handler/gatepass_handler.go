package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ciet-hostel/gatepass-api/internal/models"
	"github.com/ciet-hostel/gatepass-api/internal/service"
	appErrors "github.com/ciet-hostel/gatepass-api/pkg/errors"
	"github.com/ciet-hostel/gatepass-api/pkg/response"
)

type gatePassService interface {
	Create(ctx context.Context, actor service.Actor, req models.CreateGatePassRequest) (*models.GatePass, error)
	ListForActor(ctx context.Context, actor service.Actor, status *models.GatePassStatus, page, pageSize int) ([]models.GatePass, *models.Pagination, error)
	ListPending(ctx context.Context, actor service.Actor, page, pageSize int) ([]models.GatePass, *models.Pagination, error)
	Get(ctx context.Context, actor service.Actor, id string) (*models.GatePass, error)
	Review(ctx context.Context, actor service.Actor, id string, req models.ReviewGatePassRequest) (*models.GatePass, error)
	ExportCSV(ctx context.Context, actor service.Actor) ([]byte, error)
	RenderPassPDF(ctx context.Context, actor service.Actor, id string) ([]byte, error)
}

// GatePassHandler wires HTTP endpoints to the gate-pass service.
type GatePassHandler struct {
	service gatePassService
}

// NewGatePassHandler creates a new handler.
func NewGatePassHandler(svc gatePassService) *GatePassHandler {
	return &GatePassHandler{service: svc}
}

// Create godoc
// @Summary Submit a gate pass
// @Description Submit a new leave request for the authenticated student
// @Tags GatePasses
// @Accept json
// @Produce json
// @Param payload body models.CreateGatePassRequest true "Gate pass payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /gate-passes [post]
func (h *GatePassHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateGatePassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid gate pass payload"))
		return
	}

	pass, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, pass)
}

// List godoc
// @Summary List gate passes
// @Description Students see their own register, staff the whole hostel's
// @Tags GatePasses
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /gate-passes [get]
func (h *GatePassHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	status, err := statusFilter(c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pageSize := paging(c)

	passes, pagination, err := h.service.ListForActor(c.Request.Context(), actor, status, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, passes, pagination)
}

// ListPending godoc
// @Summary List pending gate passes
// @Description All pending requests across students, for review
// @Tags GatePasses
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /gate-passes/pending [get]
func (h *GatePassHandler) ListPending(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, pageSize := paging(c)
	passes, pagination, err := h.service.ListPending(c.Request.Context(), actor, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, passes, pagination)
}

// Get godoc
// @Summary Get a gate pass
// @Tags GatePasses
// @Produce json
// @Param id path string true "Gate pass ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /gate-passes/{id} [get]
func (h *GatePassHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pass, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, pass)
}

// Review godoc
// @Summary Review a gate pass
// @Description Approve or reject a pending request; each request is reviewed exactly once
// @Tags GatePasses
// @Accept json
// @Produce json
// @Param id path string true "Gate pass ID"
// @Param payload body models.ReviewGatePassRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /gate-passes/{id}/review [post]
func (h *GatePassHandler) Review(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ReviewGatePassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	pass, err := h.service.Review(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, pass)
}

// PassPDF godoc
// @Summary Printable gate pass
// @Description Render an approved gate pass as a PDF permit
// @Tags GatePasses
// @Produce application/pdf
// @Param id path string true "Gate pass ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /gate-passes/{id}/pdf [get]
func (h *GatePassHandler) PassPDF(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id := c.Param("id")
	out, err := h.service.RenderPassPDF(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=gate-pass-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", out)
}

// ExportCSV godoc
// @Summary Export the register
// @Description Download the full gate-pass register as CSV
// @Tags GatePasses
// @Produce text/csv
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /gate-passes/export [get]
func (h *GatePassHandler) ExportCSV(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	out, err := h.service.ExportCSV(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=gate-pass-register.csv")
	c.Data(http.StatusOK, "text/csv", out)
}

func statusFilter(raw string) (*models.GatePassStatus, error) {
	if raw == "" {
		return nil, nil
	}
	status := models.GatePassStatus(raw)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	return &status, nil
}

func paging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}
