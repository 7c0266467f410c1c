// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package api

import "errors"

// Sentinel errors used inside store transactions to map business
// failures onto HTTP statuses.
var (
	errRegistration   = errors.New("registration disabled")
	errUsernameTaken  = errors.New("username taken")
	errBadCredentials = errors.New("bad credentials")
	errBanned         = errors.New("account banned")
	errNotFound       = errors.New("not found")
	errForbidden      = errors.New("forbidden")
	errConflict       = errors.New("conflict")
	errValidation     = errors.New("validation failed")
)

// Error codes returned in the error envelope.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooLarge           = "PAYLOAD_TOO_LARGE"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
)
