// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// go-wish-keeper server handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of an operation.
// Keeping them in one place ensures consistent wording throughout the API.
package app

const (
	// MsgInvalidJSON is returned when a request body cannot be decoded.
	MsgInvalidJSON = "invalid JSON was passed"

	// MsgInvalidRegistrationData is returned when a registration request is
	// missing the principal or the password.
	MsgInvalidRegistrationData = "invalid registration data provided"

	// MsgPrincipalAlreadyTaken is returned when a registration attempt is
	// rejected because the requested principal is already in use.
	MsgPrincipalAlreadyTaken = "principal already taken"

	// MsgWrongPrincipalPassword is returned when the supplied
	// principal/password combination does not match any account.
	MsgWrongPrincipalPassword = "wrong principal/password"

	// MsgRefreshTokenRejected is returned when a refresh token is expired or
	// cannot be verified and the client must log in again.
	MsgRefreshTokenRejected = "refresh token rejected"

	// MsgNoPrincipalInContext is returned when an authenticated handler
	// finds no principal in the request context.
	MsgNoPrincipalInContext = "no principal in request context"

	// MsgUnknownCollection is returned when the collection path parameter
	// names no known document type.
	MsgUnknownCollection = "unknown collection"

	// MsgPullFailed is returned when the authority cannot assemble the
	// visible document set for a pull request.
	MsgPullFailed = "error pulling documents"

	// MsgPushFailed is returned when the authority cannot apply a push
	// batch at all. Per-document rejections travel as conflicts in a 200
	// response instead.
	MsgPushFailed = "error applying push batch"
)
