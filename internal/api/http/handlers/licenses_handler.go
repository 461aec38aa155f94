package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mp2tech/service-center/internal/api/dto"
	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/service"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// LicensesHandler manages antivirus license endpoints. Admin only.
type LicensesHandler struct {
	service *service.AntivirusService
}

// NewLicensesHandler constructs handler.
func NewLicensesHandler(antivirusService *service.AntivirusService) *LicensesHandler {
	return &LicensesHandler{service: antivirusService}
}

// Create POST /licenses.
func (h *LicensesHandler) Create(c *fiber.Ctx) error {
	var req dto.LicenseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	license, err := h.service.Create(c.Context(), licenseInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewLicenseResponse(license, time.Now())})
}

// Update PUT /licenses/:id.
func (h *LicensesHandler) Update(c *fiber.Ctx) error {
	var req dto.LicenseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	license, err := h.service.Update(c.Context(), c.Params("id"), licenseInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLicenseResponse(license, time.Now())})
}

// List GET /licenses. Pass expiring_within_days to narrow to upcoming renewals.
func (h *LicensesHandler) List(c *fiber.Ctx) error {
	now := time.Now()

	if within := c.Query("expiring_within_days"); within != "" {
		records, err := h.service.ListExpiring(c.Context(), parseInt(within, 30))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": licenseResponses(records, now)})
	}

	records, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": licenseResponses(records, now)})
}

// Get GET /licenses/:id.
func (h *LicensesHandler) Get(c *fiber.Ctx) error {
	license, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLicenseResponse(license, time.Now())})
}

// Delete DELETE /licenses/:id.
func (h *LicensesHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func licenseResponses(records []domain.AntivirusLicense, now time.Time) []dto.LicenseResponse {
	items := make([]dto.LicenseResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.NewLicenseResponse(&records[i], now))
	}
	return items
}

func licenseInput(req dto.LicenseRequest) service.LicenseInput {
	return service.LicenseInput{
		CustomerID: req.CustomerID,
		Product:    req.Product,
		LicenseKey: req.LicenseKey,
		ExpiryDate: req.ExpiryDate,
	}
}
