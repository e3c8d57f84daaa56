package model

// AssignmentEmailRequest is the DTO for POST /api/assignmentemail/sendemails.
type AssignmentEmailRequest struct {
	Template       string              `json:"template" validate:"required,notblank"`
	TemplateTokens []map[string]string `json:"template_tokens" validate:"required,min=1"`
}

// AssignmentEmailStatus is the per-token-set result entry returned by the
// sendemails endpoint, in the same order the token sets were submitted.
type AssignmentEmailStatus struct {
	UserEmail        string   `json:"user_email"`
	Code             string   `json:"code"`
	Status           string   `json:"status"`
	MissingKeys      []string `json:"missing_keys"`
	MissingValues    []string `json:"missing_values"`
	TemplateKeyError string   `json:"template_key_error"`
}

// AssignmentEmailResponse wraps the per-entry statuses.
type AssignmentEmailResponse struct {
	Status []AssignmentEmailStatus `json:"status"`
}

// EmailStatusUpdateRequest is the DTO for POST /api/assignmentemail/updatestatus.
type EmailStatusUpdateRequest struct {
	UserEmail string `json:"user_email" validate:"required,email,max=255"`
	Code      string `json:"code" validate:"required,notblank,max=255"`
	Status    string `json:"status" validate:"required,oneof=success failed"`
}

// EmailStatusUpdateResponse echoes the update outcome.
type EmailStatusUpdateResponse struct {
	UserEmail string `json:"user_email"`
	Code      string `json:"code"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// BasketOwnerRequest identifies the basket owner in an eligibility check.
type BasketOwnerRequest struct {
	Username string `json:"username" validate:"required,notblank,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

// BasketLineRequest is one product entry in an eligibility check.
type BasketLineRequest struct {
	ProductID   int64  `json:"product_id" validate:"required,gte=1"`
	CourseRunID string `json:"course_run_id"`
	Quantity    int    `json:"quantity" validate:"required,gte=1"`
	Price       string `json:"price"`
}

// BasketRequest describes the basket submitted for an eligibility check.
// Owner is optional: an absent owner models an anonymous basket.
type BasketRequest struct {
	Owner       *BasketOwnerRequest `json:"owner"`
	CatalogUUID string              `json:"catalog_uuid"`
	Lines       []BasketLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// EligibilityRequest is the DTO for POST /api/offers/eligibility. Exactly one
// of Code (voucher offers) or OfferID (site offers) selects the offer.
type EligibilityRequest struct {
	OfferID int64         `json:"offer_id"`
	Code    string        `json:"code"`
	Basket  BasketRequest `json:"basket" validate:"required"`
}

// EligibilityResponse reports the outcome of an eligibility check.
type EligibilityResponse struct {
	Eligible bool   `json:"eligible"`
	Total    string `json:"total"`
}
