package handlers

import (
	"strconv"

	"svco-apply/internal/adapters/persistence/models"
	"svco-apply/internal/core/services"
	"svco-apply/internal/pkg/pagination"
	"svco-apply/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BatchHandler handles batch reporting endpoints
type BatchHandler struct {
	applicationService *services.ApplicationService
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(applicationService *services.ApplicationService) *BatchHandler {
	return &BatchHandler{
		applicationService: applicationService,
	}
}

// GetStats handles batch statistics
// @Summary Batch statistics
// @Description Per-stage application counts and total fees collected for a batch
// @Tags Batches
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /batches/{id}/stats [get]
func (h *BatchHandler) GetStats(c *fiber.Ctx) error {
	batchID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid batch ID")
	}

	stats, err := h.applicationService.BatchStats(c.UserContext(), uint(batchID))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Batch statistics retrieved", stats)
}

// ListApplications handles paginated application listing
// @Summary List batch applications
// @Description Lists a batch's applications, newest first
// @Tags Batches
// @Produce json
// @Param id path int true "Batch ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /batches/{id}/applications [get]
func (h *BatchHandler) ListApplications(c *fiber.Ctx) error {
	batchID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid batch ID")
	}

	params := pagination.GetParams(c)
	applications, total, err := h.applicationService.ListApplications(
		c.UserContext(), uint(batchID), params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}

	items := make([]*models.ApplicationResponse, 0, len(applications))
	for _, a := range applications {
		items = append(items, a.ToResponse())
	}

	return response.Success(c, "Applications retrieved", pagination.NewResponse(items, params, total))
}
