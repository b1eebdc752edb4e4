package service

import "errors"

var (
	ErrUserInput         = errors.New("invalid user input")
	ErrDataSource        = errors.New("directory unavailable")
	ErrPersistence       = errors.New("request store failure")
	ErrDeliveryForbidden = errors.New("recipient does not accept direct messages")
	ErrComposition       = errors.New("document composition failed")
	ErrNoApprover        = errors.New("no approver assigned to team")
	ErrAlreadyResolved   = errors.New("request already resolved")
	ErrNotAuthorized     = errors.New("actor not authorized")
)
