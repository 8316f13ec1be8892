package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/creativa-studio/lead-service/internal/api/dto"
	"github.com/creativa-studio/lead-service/internal/auth"
	"github.com/creativa-studio/lead-service/internal/dashboard"
	"github.com/creativa-studio/lead-service/internal/domain"
	"github.com/creativa-studio/lead-service/internal/service"
	apperrors "github.com/creativa-studio/lead-service/pkg/util/errorutil"
)

// ContactHandler manages lead submission and triage endpoints.
type ContactHandler struct {
	service *service.LeadService
}

// NewContactHandler constructs handler.
func NewContactHandler(leadService *service.LeadService) *ContactHandler {
	return &ContactHandler{service: leadService}
}

// Submit POST /api/contact.
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.SubmissionInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		AcceptTerms: req.AcceptTerms,
	}
	lead, err := h.service.Submit(c.UserContext(), input, req.VerificationToken, c.IP())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": leadResponse(lead)})
}

// List GET /api/contact.
func (h *ContactHandler) List(c *fiber.Ctx) error {
	leads, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.LeadResponse, 0, len(leads))
	for i := range leads {
		items = append(items, leadResponse(&leads[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Stats GET /api/contact/stats.
func (h *ContactHandler) Stats(c *fiber.Ctx) error {
	leads, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboard.ComputeStats(leads)})
}

// Export GET /api/contact/export. Streams the filtered set as CSV.
func (h *ContactHandler) Export(c *fiber.Ctx) error {
	leads, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}

	now := time.Now()
	filtered := dashboard.ApplyFilters(leads, parseFilter(c), now)

	var buf bytes.Buffer
	if err := dashboard.WriteCSV(&buf, filtered); err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", dashboard.ExportFilename(now)))
	return c.Send(buf.Bytes())
}

// UpdateStatus PUT /api/contact/:id.
func (h *ContactHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lead, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, principal.Admin.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// Delete DELETE /api/contact/:id.
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	if err := h.service.Delete(c.UserContext(), c.Params("id"), principal.Admin.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// BulkDelete DELETE /api/contact/bulk.
func (h *ContactHandler) BulkDelete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.BulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	resp := dto.BulkDeleteResponse{}
	if len(req.IDs) == 0 {
		resp.Warning = "no ids provided"
		return c.JSON(fiber.Map{"data": resp})
	}

	count, err := h.service.BulkDelete(c.UserContext(), req.IDs, principal.Admin.ID)
	if err != nil {
		return err
	}
	resp.DeletedCount = count
	return c.JSON(fiber.Map{"data": resp})
}

func parseFilter(c *fiber.Ctx) dashboard.Filter {
	filter := dashboard.Filter{
		Search: c.Query("search"),
		Status: dashboard.StatusAll,
		Date:   dashboard.DateAll,
	}
	if status := c.Query("status"); status != "" {
		filter.Status = dashboard.StatusFilter(status)
	}
	if date := c.Query("date"); date != "" {
		filter.Date = dashboard.DateRange(date)
	}
	return filter
}

func leadResponse(lead *domain.Lead) dto.LeadResponse {
	return dto.LeadResponse{
		ID:        lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Message:   lead.Message,
		Status:    lead.Status,
		CreatedAt: lead.CreatedAt,
	}
}
