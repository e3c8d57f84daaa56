package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/simonclouds/ecommerce/internal/model"
	"github.com/simonclouds/ecommerce/internal/service"
)

// EligibilityServiceInterface defines the interface for offer eligibility
// business logic.
type EligibilityServiceInterface interface {
	CheckBasket(ctx context.Context, req *model.EligibilityRequest) (*model.EligibilityResponse, error)
	SlotsAvailable(ctx context.Context, code string) (int, error)
}

// OfferHandler handles HTTP requests for offer eligibility operations.
type OfferHandler struct {
	service   EligibilityServiceInterface
	validator *validator.Validate
}

// NewOfferHandler creates a new OfferHandler with the given service and
// validator.
func NewOfferHandler(svc EligibilityServiceInterface, v *validator.Validate) *OfferHandler {
	return &OfferHandler{service: svc, validator: v}
}

// CheckEligibility handles POST /api/offers/eligibility requests, evaluating
// a submitted basket against an offer selected by voucher code or offer ID.
func (h *OfferHandler) CheckEligibility(c *fiber.Ctx) error {
	var req model.EligibilityRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatEligibilityValidationError(err)})
	}

	resp, err := h.service.CheckBasket(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "voucher not found"})
		}
		if errors.Is(err, service.ErrOfferNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "offer not found"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).
			Str("code", req.Code).
			Int64("offer_id", req.OfferID).
			Msg("failed to check basket eligibility")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("code", req.Code).
		Int64("offer_id", req.OfferID).
		Bool("eligible", resp.Eligible).
		Msg("basket eligibility evaluated")

	return c.JSON(resp)
}

// CodeSlots handles GET /api/offers/codes/:code/slots requests, reporting
// how many assignment slots remain on a voucher code.
func (h *OfferHandler) CodeSlots(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: code is required"})
	}

	slots, err := h.service.SlotsAvailable(c.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "voucher not found"})
		}
		if errors.Is(err, service.ErrOfferNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "offer not found"})
		}
		log.Error().Err(err).Str("code", code).Msg("failed to compute slots available")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{
		"code":            code,
		"slots_available": slots,
	})
}

// formatEligibilityValidationError converts validator errors to stable
// messages for the eligibility endpoint.
func formatEligibilityValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			switch fe.Field() {
			case "Lines":
				if fe.Tag() == "min" {
					return "invalid request: basket must contain at least one line"
				}
				return "invalid request: basket lines are required"
			case "Username", "Email":
				return "invalid request: basket owner is incomplete"
			case "ProductID", "Quantity":
				return "invalid request: basket line is invalid"
			}
		}
	}
	return "invalid request"
}
