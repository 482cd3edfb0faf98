// Package utils provides general-purpose helper utilities used across
// different parts of the application: context keys, HTTP response writing,
// JWT token generation and validation, and typed document id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys. Using a dedicated type
// instead of a plain string prevents key collisions with other packages that
// may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key. Implements
// the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// PrincipalCtxKey is the key used to store the authenticated principal
// identifier in the context. Used together with GetPrincipalFromContext for
// type-safe retrieval.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.PrincipalCtxKey, "alice")
var PrincipalCtxKey = contextKey("principal")

// GetPrincipalFromContext retrieves the authenticated principal identifier
// from the context.
//
// Returns the principal string and an ok flag:
//   - ok == true  — value is found and has the correct string type
//   - ok == false — value is missing or has an unexpected type
func GetPrincipalFromContext(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(PrincipalCtxKey).(string)
	if !ok || principal == "" {
		return "", false
	}
	return principal, true
}
