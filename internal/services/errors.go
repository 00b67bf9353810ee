package services

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrMissingFields       = errors.New("missing payment fields")
	ErrNotFound            = errors.New("donation not found")
	ErrInvalidSignature    = errors.New("invalid payment signature")
	ErrPaymentClosed       = errors.New("payment already failed")
	ErrUpstreamUnavailable = errors.New("payment service unavailable")

	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
