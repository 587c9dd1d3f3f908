package handlers

import (
	"strconv"

	"svco-apply/internal/core/services"
	"svco-apply/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles applicant-facing application endpoints
type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

// StartApplication handles new application submission
// @Summary Start an application
// @Description Creates the applicant and their application for an open batch and emails a resume link
// @Tags Applications
// @Accept json
// @Produce json
// @Param request body services.StartApplicationInput true "Application form"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /applications [post]
func (h *ApplicationHandler) StartApplication(c *fiber.Ctx) error {
	var input services.StartApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	application, err := h.applicationService.StartApplication(c.UserContext(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Application started, check your email for the resume link", application.ToResponse())
}

// ResumeApplication handles resuming by token
// @Summary Resume an application
// @Description Resolves a resumption token to the applicant's current application
// @Tags Applications
// @Produce json
// @Param token query string true "Resumption token"
// @Param shared_device query bool false "Applicant is on a shared device"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /applications/resume [get]
func (h *ApplicationHandler) ResumeApplication(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return response.BadRequest(c, "token is required")
	}

	application, err := h.applicationService.ResumeApplication(c.UserContext(), token)
	if err != nil {
		return response.DomainError(c, err)
	}

	// Shared-device resumes should not be remembered by the client.
	sharedDevice := c.QueryBool("shared_device")

	return response.Success(c, "Application retrieved", fiber.Map{
		"application":   application.ToResponse(),
		"shared_device": sharedDevice,
	})
}

// SetTeamSizeInput represents team size input
type SetTeamSizeInput struct {
	CofounderCount int `json:"cofounder_count"`
}

// SetTeamSize handles team size selection
// @Summary Set team size
// @Description Stores the co-founder count and returns the recomputed application fee
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body SetTeamSizeInput true "Team size"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications/{id}/team [patch]
func (h *ApplicationHandler) SetTeamSize(c *fiber.Ctx) error {
	applicationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var input SetTeamSizeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	fee, err := h.applicationService.SetTeamSize(c.UserContext(), uint(applicationID), input.CofounderCount)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Team size updated", fiber.Map{
		"cofounder_count": input.CofounderCount,
		"fee":             fee,
	})
}

// AddCofounder handles adding a co-founder
// @Summary Add a co-founder
// @Description Attaches a co-founder to the application roster before payment
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body services.CofounderInput true "Co-founder"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications/{id}/cofounders [post]
func (h *ApplicationHandler) AddCofounder(c *fiber.Ctx) error {
	applicationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var input services.CofounderInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	cofounder, err := h.applicationService.AddCofounder(c.UserContext(), uint(applicationID), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Co-founder added", cofounder)
}

// RemoveCofounder handles removing a co-founder
// @Summary Remove a co-founder
// @Description Detaches a co-founder from the roster before payment
// @Tags Applications
// @Produce json
// @Param id path int true "Application ID"
// @Param cofounderId path int true "Co-founder ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications/{id}/cofounders/{cofounderId} [delete]
func (h *ApplicationHandler) RemoveCofounder(c *fiber.Ctx) error {
	applicationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}
	cofounderID, err := strconv.ParseUint(c.Params("cofounderId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid co-founder ID")
	}

	if err := h.applicationService.RemoveCofounder(c.UserContext(), uint(applicationID), uint(cofounderID)); err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Co-founder removed", nil)
}

// RequestPayment handles fee payment request
// @Summary Request the fee payment
// @Description Returns the pending payment with its redirect URL, creating a gateway request if none exists
// @Tags Payments
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /applications/{id}/payments [post]
func (h *ApplicationHandler) RequestPayment(c *fiber.Ctx) error {
	applicationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	payment, err := h.applicationService.RequestPayment(c.UserContext(), uint(applicationID))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Payment request ready", payment.ToResponse())
}
