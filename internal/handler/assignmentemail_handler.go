package handler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/simonclouds/ecommerce/internal/email"
	"github.com/simonclouds/ecommerce/internal/model"
	"github.com/simonclouds/ecommerce/internal/service"
)

// Email delivery statuses reported per token set.
const (
	emailStatusDispatched = "Dispatched"
	emailStatusFailed     = "Failed"
)

const assignmentEmailSubject = "New course assignment"

// requiredTokenKeys are the template tokens every token set must provide.
var requiredTokenKeys = []string{
	"user_email", "code", "enrollment_url", "code_usage_count", "code_expiration_date",
}

var templateTokenPattern = regexp.MustCompile(`\{(\w+)\}`)

// EmailStatusUpdater defines the interface for recording assignment email
// delivery outcomes.
type EmailStatusUpdater interface {
	UpdateEmailStatus(ctx context.Context, userEmail, code, emailStatus string) error
}

// AssignmentEmailHandler handles the bulk code-assignment email API.
type AssignmentEmailHandler struct {
	dispatcher  email.Dispatcher
	assignments EmailStatusUpdater
	validator   *validator.Validate
}

// NewAssignmentEmailHandler creates an AssignmentEmailHandler with the given
// dispatcher, assignment service and validator.
func NewAssignmentEmailHandler(dispatcher email.Dispatcher, assignments EmailStatusUpdater, v *validator.Validate) *AssignmentEmailHandler {
	return &AssignmentEmailHandler{dispatcher: dispatcher, assignments: assignments, validator: v}
}

// emailParameters holds the outcome of resolving one token set against the
// template. An entry with missing keys, missing values or a template key
// error is never dispatched.
type emailParameters struct {
	recipient        string
	code             string
	body             string
	missingKeys      []string
	missingValues    []string
	templateKeyError string
}

func (p *emailParameters) ok() bool {
	return len(p.missingKeys) == 0 && len(p.missingValues) == 0 && p.templateKeyError == ""
}

// resolveEmailParameters validates one token set and renders the template.
// The expiration date is normalized to midnight of its day before rendering.
func resolveEmailParameters(template string, tokens map[string]string) emailParameters {
	p := emailParameters{
		recipient:     tokens["user_email"],
		code:          tokens["code"],
		missingKeys:   []string{},
		missingValues: []string{},
	}

	for _, key := range requiredTokenKeys {
		value, present := tokens[key]
		if !present {
			p.missingKeys = append(p.missingKeys, key)
			continue
		}
		if value == "" {
			p.missingValues = append(p.missingValues, key)
		}
	}
	if len(p.missingKeys) > 0 || len(p.missingValues) > 0 {
		return p
	}

	expiration, err := time.Parse(time.RFC3339, tokens["code_expiration_date"])
	if err != nil {
		// An unparseable expiration date is reported like an empty value.
		p.missingValues = append(p.missingValues, "code_expiration_date")
		return p
	}
	expirationDay := time.Date(
		expiration.Year(), expiration.Month(), expiration.Day(), 0, 0, 0, 0, expiration.Location())

	rendered := map[string]string{}
	for key, value := range tokens {
		rendered[key] = value
	}
	rendered["code_expiration_date"] = expirationDay.Format("2006-01-02")

	body, err := renderTemplate(template, rendered)
	if err != nil {
		log.Error().Err(err).Str("code", p.code).Msg("email template token issue")
		p.templateKeyError = err.Error()
		return p
	}

	p.body = body
	return p
}

// renderTemplate substitutes {token} placeholders with their values. A
// placeholder without a matching token is an error.
func renderTemplate(template string, tokens map[string]string) (string, error) {
	var unknown string
	rendered := templateTokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := tokens[key]
		if !ok {
			if unknown == "" {
				unknown = key
			}
			return match
		}
		return value
	})
	if unknown != "" {
		return "", fmt.Errorf("unknown template token %q", unknown)
	}
	return rendered, nil
}

// SendEmails handles POST /api/assignmentemail/sendemails. Each submitted
// token set yields exactly one status entry, in input order; entries that
// fail validation are reported without attempting dispatch.
func (h *AssignmentEmailHandler) SendEmails(c *fiber.Ctx) error {
	var req model.AssignmentEmailRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Required parameters are missing"})
	}

	statuses := make([]model.AssignmentEmailStatus, 0, len(req.TemplateTokens))
	for _, tokens := range req.TemplateTokens {
		params := resolveEmailParameters(req.Template, tokens)

		entry := model.AssignmentEmailStatus{
			UserEmail:        params.recipient,
			Code:             params.code,
			Status:           emailStatusFailed,
			MissingKeys:      params.missingKeys,
			MissingValues:    params.missingValues,
			TemplateKeyError: params.templateKeyError,
		}

		if params.ok() {
			msg := email.Message{
				Recipient: params.recipient,
				Subject:   assignmentEmailSubject,
				Body:      params.body,
			}
			if err := h.dispatcher.Dispatch(c.Context(), msg); err != nil {
				log.Error().Err(err).
					Str("user_email", params.recipient).
					Str("code", params.code).
					Msg("failed to dispatch assignment email")
			} else {
				entry.Status = emailStatusDispatched
			}
		}

		statuses = append(statuses, entry)
	}

	return c.JSON(model.AssignmentEmailResponse{Status: statuses})
}

// UpdateStatus handles POST /api/assignmentemail/updatestatus, recording the
// delivery outcome reported by the email worker on the matching assignment.
func (h *AssignmentEmailHandler) UpdateStatus(c *fiber.Ctx) error {
	var req model.EmailStatusUpdateRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatStatusUpdateValidationError(err)})
	}

	if err := h.assignments.UpdateEmailStatus(c.Context(), req.UserEmail, req.Code, req.Status); err != nil {
		resp := model.EmailStatusUpdateResponse{
			UserEmail: req.UserEmail,
			Code:      req.Code,
			Status:    "failed",
		}
		if errors.Is(err, service.ErrAssignmentNotFound) {
			resp.Error = "offer assignment not found"
			return c.Status(fiber.StatusBadRequest).JSON(resp)
		}
		log.Error().Err(err).
			Str("user_email", req.UserEmail).
			Str("code", req.Code).
			Msg("failed to update assignment email status")
		resp.Error = "internal server error"
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}

	return c.JSON(model.EmailStatusUpdateResponse{
		UserEmail: req.UserEmail,
		Code:      req.Code,
		Status:    "updated",
	})
}

// formatStatusUpdateValidationError converts validator errors to stable
// messages for the updatestatus endpoint.
func formatStatusUpdateValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			switch fe.Field() {
			case "UserEmail":
				if fe.Tag() == "required" {
					return "invalid request: user_email is required"
				}
				return "invalid request: user_email is invalid"
			case "Code":
				if fe.Tag() == "required" {
					return "invalid request: code is required"
				}
				return "invalid request: code is invalid"
			case "Status":
				if fe.Tag() == "required" {
					return "invalid request: status is required"
				}
				return "invalid request: status must be success or failed"
			}
		}
	}
	return "invalid request"
}
