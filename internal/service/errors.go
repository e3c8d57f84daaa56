package service

import "errors"

var (
	// ErrVoucherNotFound is returned when no voucher exists for a code
	ErrVoucherNotFound = errors.New("voucher not found")

	// ErrOfferNotFound is returned when an offer cannot be found
	ErrOfferNotFound = errors.New("offer not found")

	// ErrAssignmentNotFound is returned when no offer assignment matches a code and email
	ErrAssignmentNotFound = errors.New("offer assignment not found")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")
)
