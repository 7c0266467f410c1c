// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package models

import "time"

// APIResponse is the envelope every JSON endpoint returns.
//
// Example success response:
//
//	{
//	  "status": "success",
//	  "data": {"videos": [...], "total": 12, "page": 1},
//	  "metadata": {"timestamp": "2026-08-29T12:00:00Z"}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "NOT_FOUND", "message": "video not found"},
//	  "metadata": {"timestamp": "2026-08-29T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata common to every endpoint.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError is a structured error with a machine-readable code.
//
// Codes in use: VALIDATION_ERROR, UNAUTHORIZED, FORBIDDEN, NOT_FOUND,
// SERVICE_UNAVAILABLE, INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
