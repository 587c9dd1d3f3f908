package handlers

import (
	"svco-apply/internal/adapters/persistence/repositories"
	"svco-apply/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MasterHandler handles master data endpoints for the application form
type MasterHandler struct {
	universityRepo repositories.UniversityRepository
}

// NewMasterHandler creates a new master data handler
func NewMasterHandler(universityRepo repositories.UniversityRepository) *MasterHandler {
	return &MasterHandler{
		universityRepo: universityRepo,
	}
}

// ListUniversities handles university list
// @Summary List universities
// @Description University reference data for the application form
// @Tags Master
// @Produce json
// @Success 200 {object} response.Response
// @Router /universities [get]
func (h *MasterHandler) ListUniversities(c *fiber.Ctx) error {
	universities, err := h.universityRepo.List(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Failed to list universities")
	}
	return response.Success(c, "Universities retrieved", universities)
}
