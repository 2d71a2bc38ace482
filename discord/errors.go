// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"errors"
	"fmt"
)

// APIError represents a structured error response from Discord.
// Callers can use errors.As to extract the structured information:
//
//	var apiErr *discord.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.Code == discord.CodeUnknownMessage { ... }
//	}
type APIError struct {
	// Code is Discord's JSON error code (e.g., 10008 for an unknown
	// message). Zero when the response carried no code.
	Code int `json:"code"`
	// Message is the human-readable error description from the server.
	Message string `json:"message"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord: %d (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Discord JSON error codes the transfer layer distinguishes.
const (
	CodeUnknownChannel     = 10003
	CodeUnknownMessage     = 10008
	CodeEntityTooLarge     = 40005
	CodeMissingAccess      = 50001
	CodeMissingPermissions = 50013
	CodeInvalidFormBody    = 50035
)

// IsAPIError checks whether err is an *APIError with the given error code.
func IsAPIError(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
