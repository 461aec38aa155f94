package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mp2tech/service-center/internal/api/dto"
	"github.com/mp2tech/service-center/internal/auth"
	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/lifecycle"
	"github.com/mp2tech/service-center/internal/service"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints for both roles; the service layer
// scopes what technicians can see and do.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CustomerID == "" || req.Title == "" {
		return apperrors.NewValidationError("customer_id and title required", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		CustomerID:  req.CustomerID,
		Title:       req.Title,
		Description: req.Description,
		IssueType:   req.IssueType,
		TicketType:  req.TicketType,
		Priority:    req.Priority,
		Device: domain.DeviceInfo{
			Type:         req.Device.Type,
			Brand:        req.Device.Brand,
			SerialNumber: req.Device.SerialNumber,
			Working:      req.Device.Working,
		},
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.Context(), actor, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	ticket, remarks, err := h.service.GetTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket, remarks)})
}

// EditTicket PATCH /tickets/:id.
func (h *TicketsHandler) EditTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.EditTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.TicketEditInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		IssueType:      req.IssueType,
		EstimateAmount: req.EstimateAmount,
		PickupDate:     req.PickupDate,
		PickupTime:     req.PickupTime,
		DeliveryDate:   req.DeliveryDate,
		DeliveryTime:   req.DeliveryTime,
	}
	if req.Device != nil {
		input.Device = &domain.DeviceInfo{
			Type:         req.Device.Type,
			Brand:        req.Device.Brand,
			SerialNumber: req.Device.SerialNumber,
			Working:      req.Device.Working,
		}
	}
	ticket, err := h.service.EditTicket(c.Context(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Transition POST /tickets/:id/status.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Transition(c.Context(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Assign POST /tickets/:id/assign. Admin only.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" {
		return apperrors.NewValidationError("technician_id required", nil)
	}
	ticket, err := h.service.Assign(c.Context(), actor, c.Params("id"), req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Approve POST /tickets/:id/approve. Admin only.
func (h *TicketsHandler) Approve(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Approve(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Reject POST /tickets/:id/reject. Admin only.
func (h *TicketsHandler) Reject(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Reject(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// SetArchived POST /tickets/:id/archive.
func (h *TicketsHandler) SetArchived(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.ArchiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.SetArchived(c.Context(), actor, c.Params("id"), req.Archived); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"archived": req.Archived}})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.service.SoftDelete(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddRemark POST /tickets/:id/remarks.
func (h *TicketsHandler) AddRemark(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateRemarkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	attachments := make([]service.RemarkAttachmentInput, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		data, err := base64.StdEncoding.DecodeString(att.Content)
		if err != nil {
			return apperrors.NewValidationError("attachment content must be base64",
				map[string]any{"name": att.Name})
		}
		attachments = append(attachments, service.RemarkAttachmentInput{Name: att.Name, Data: data})
	}
	remark, err := h.service.AddRemark(c.Context(), actor, c.Params("id"), req.Text, attachments)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRemarkResponse(remark)})
}

// StatusCounts GET /tickets/stats.
func (h *TicketsHandler) StatusCounts(c *fiber.Ctx) error {
	counts, err := h.service.StatusCounts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

// ListStatuses GET /statuses exposes the registry in board order.
func (h *TicketsHandler) ListStatuses(c *fiber.Ctx) error {
	infos := domain.AllStatusInfos()
	items := make([]dto.StatusInfoResponse, 0, len(infos))
	for _, info := range infos {
		items = append(items, dto.StatusInfoResponse{
			Code:      info.Code,
			Label:     info.Label,
			Color:     info.Color,
			SortOrder: info.SortOrder,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func requireActor(c *fiber.Ctx) (lifecycle.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return lifecycle.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return lifecycle.Actor{ID: principal.Profile.ID, Role: principal.Role}, nil
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		filter.CustomerID = &customerID
	}
	if needsApproval := c.Query("needs_approval"); needsApproval != "" {
		parsed := needsApproval == "true"
		filter.NeedsApproval = &parsed
	}
	if archived := c.Query("archived"); archived != "" {
		parsed := archived == "true"
		filter.Archived = &parsed
	}
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		filter.SearchTerm = &term
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if page < 1 {
		page = 1
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
