package models

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. Every stage returns one of these (possibly wrapped).
var (
	ErrInvalidPayload            = errors.New("invalid change event payload")
	ErrMissingPriorState         = errors.New("old_record is required for a status transition")
	ErrAmbiguousTrigger          = errors.New("change event matches more than one notification variant")
	ErrInvalidRecord             = errors.New("order record is missing required fields")
	ErrRecipientLookupFailed     = errors.New("recipient lookup failed")
	ErrRecipientNotFound         = errors.New("recipient not found")
	ErrCredentialUnavailable     = errors.New("service credential unavailable")
	ErrCredentialExchangeFailed  = errors.New("credential exchange failed")
	ErrNotificationSendFailed    = errors.New("failed to send notification")
	ErrPartialOrTotalSendFailure = errors.New("failed to send some notifications")

	// ErrUserNotFound is returned by the record store when no user row matches.
	ErrUserNotFound = errors.New("user not found")
)

// SendFailedError - неуспешная отправка единственному получателю.
type SendFailedError struct {
	Status int
	Body   string
}

func (e *SendFailedError) Error() string {
	return fmt.Sprintf("Failed to send notification: %s", e.Body)
}

func (e *SendFailedError) Unwrap() error {
	return ErrNotificationSendFailed
}

// PartialSendFailureError - часть (или все) отправок широковещательной рассылки не прошли.
// FailedTokens хранит токены неуспешных отправок для возможной повторной отправки вызывающим.
type PartialSendFailureError struct {
	Failed       int
	Total        int
	FailedTokens []string
}

func (e *PartialSendFailureError) Error() string {
	return fmt.Sprintf("Failed to send some notifications: %d", e.Failed)
}

func (e *PartialSendFailureError) Unwrap() error {
	return ErrPartialOrTotalSendFailure
}
