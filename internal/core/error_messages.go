// Package core provides the join and filter pipeline behind the dashboard.
//
// # Error Codes Reference
//
// This file maps errors to user-friendly messages with codes for support
// reference. Operators can quote the code from a failed startup or a failed
// request.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source missing: A reference file or table could not be found
//	         Action: Check SOURCE_DIR and the source patterns
//
//	SRC002 - Source unreadable: A reference file could not be read
//	         Action: Re-export the file as .xlsx or UTF-8 .csv
//
//	SRC003 - Schema mismatch: A required column is missing
//	         Action: Compare the header row with the expected columns
//
//	SRC004 - Invalid value: A cell holds a value its column cannot accept
//	         Action: Fix the cell at the reported line upstream
//
// # Data Integrity Errors (JOIN001, LKP001)
//
//	JOIN001 - Duplicate key: A country appears twice in a source
//	          Action: Remove the duplicate row upstream
//
//	LKP001 - Unknown continent: A continent is outside the known vocabulary
//	         Action: Use Africa, America, Asia, Europe or Oceania
//
// # Request Errors (FLT001, REQ001-REQ099, RATE001)
//
//	FLT001 - Unknown filter option: A filter names an option that does not exist
//	         Action: Pick one of the options listed by /api/buckets
//
//	REQ001 - Request cancelled
//	REQ002 - Request timed out
//	REQ003 - Not found: The requested page or resource does not exist
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Check application logs for the original error
//
// Typed errors are matched first with errors.As. Remaining errors are
// matched case-insensitively by substring, first match wins.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var sourceMessages = map[LoadFailure]UserMessage{
	FailureMissing: {
		Message: "A reference source could not be found",
		Action:  "Check SOURCE_DIR and the source patterns",
		Code:    "SRC001",
	},
	FailureUnreadable: {
		Message: "A reference source could not be read",
		Action:  "Re-export the file as .xlsx or UTF-8 .csv",
		Code:    "SRC002",
	},
	FailureSchema: {
		Message: "A reference source is missing a required column",
		Action:  "Compare the header row with the expected columns",
		Code:    "SRC003",
	},
	FailureValue: {
		Message: "A reference source holds an invalid value",
		Action:  "Fix the cell at the reported line upstream",
		Code:    "SRC004",
	},
}

var (
	joinMessage = UserMessage{
		Message: "A country appears more than once in a source",
		Action:  "Remove the duplicate row upstream",
		Code:    "JOIN001",
	}
	lookupMessage = UserMessage{
		Message: "A continent is outside the known vocabulary",
		Action:  "Use Africa, America, Asia, Europe or Oceania",
		Code:    "LKP001",
	}
	bucketMessage = UserMessage{
		Message: "A filter names an option that does not exist",
		Action:  "Pick one of the options listed by /api/buckets",
		Code:    "FLT001",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns covers errors that do not come from this package.
var errorPatterns = []errorPattern{
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "The requested page does not exist",
			Action:  "Check the address or start from /poblacion",
			Code:    "REQ003",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check application logs for the original error",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := core.Build(ctx, loader, set)
//	msg := core.MapError(err)
//	// msg.Code == "JOIN001" for a duplicated country
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var srcErr *SourceLoadError
	if errors.As(err, &srcErr) {
		if msg, ok := sourceMessages[srcErr.Failure]; ok {
			return msg
		}
	}
	var joinErr *JoinIntegrityError
	if errors.As(err, &joinErr) {
		return joinMessage
	}
	var lookupErr *LookupMissError
	if errors.As(err, &lookupErr) {
		return lookupMessage
	}
	var bucketErr *UnknownBucketError
	if errors.As(err, &bucketErr) {
		return bucketMessage
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
