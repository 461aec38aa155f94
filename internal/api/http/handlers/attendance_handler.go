package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mp2tech/service-center/internal/api/dto"
	"github.com/mp2tech/service-center/internal/auth"
	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/service"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// AttendanceHandler manages technician attendance endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: attendanceService}
}

// CheckIn POST /attendance/check-in.
func (h *AttendanceHandler) CheckIn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		req.Status = domain.AttendancePresent
	}
	record, err := h.service.CheckIn(c.Context(), principal.Profile.ID, req.Status)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAttendanceResponse(record)})
}

// CheckOut POST /attendance/check-out.
func (h *AttendanceHandler) CheckOut(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	record, err := h.service.CheckOut(c.Context(), principal.Profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAttendanceResponse(record)})
}

// Approve POST /attendance/:id/approve. Admin only.
func (h *AttendanceHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Approve(c.Context(), c.Params("id"), principal.Profile.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"approved": true}})
}

// ListForDate GET /attendance. Admin only; defaults to today.
func (h *AttendanceHandler) ListForDate(c *fiber.Ctx) error {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperrors.NewValidationError("date must be YYYY-MM-DD", nil)
		}
		date = parsed
	}
	records, err := h.service.ListForDate(c.Context(), date)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attendanceResponses(records)})
}

// History GET /attendance/history returns the caller's own records.
func (h *AttendanceHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperrors.NewValidationError("from must be YYYY-MM-DD", nil)
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperrors.NewValidationError("to must be YYYY-MM-DD", nil)
		}
		to = parsed
	}
	records, err := h.service.History(c.Context(), principal.Profile.ID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attendanceResponses(records)})
}

func attendanceResponses(records []domain.Attendance) []dto.AttendanceResponse {
	items := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.NewAttendanceResponse(&records[i]))
	}
	return items
}
