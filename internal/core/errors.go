package core

// errors.go defines the load-time error taxonomy.
//
// Every load-time error aborts dataset construction. Callers match the
// category with errors.Is against the sentinels and extract details with
// errors.As on the struct types.

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceLoad matches any *SourceLoadError.
	ErrSourceLoad = errors.New("source load error")

	// ErrJoinIntegrity matches any *JoinIntegrityError.
	ErrJoinIntegrity = errors.New("join integrity error")

	// ErrLookupMiss matches any *LookupMissError.
	ErrLookupMiss = errors.New("continent lookup miss")

	// ErrUnknownBucket matches any *UnknownBucketError.
	ErrUnknownBucket = errors.New("unknown bucket")
)

// LoadFailure classifies a SourceLoadError.
type LoadFailure string

const (
	FailureMissing    LoadFailure = "missing"    // Source absent
	FailureUnreadable LoadFailure = "unreadable" // Source present but could not be read or parsed
	FailureSchema     LoadFailure = "schema"     // Expected column absent
	FailureValue      LoadFailure = "value"      // Cell value invalid for its column
)

// SourceLoadError reports a source that is absent, unreadable or does not
// match its schema.
type SourceLoadError struct {
	Source  SourceKey
	Ref     string
	Failure LoadFailure
	Line    int    // 0 when not tied to a row
	Column  string // Empty when not tied to a column
	Err     error
}

func (e *SourceLoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s source %s", e.Failure, e.Source)
	if e.Ref != "" {
		fmt.Fprintf(&b, " (%s)", e.Ref)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *SourceLoadError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSourceLoad.
func (e *SourceLoadError) Is(target error) bool { return target == ErrSourceLoad }

// JoinIntegrityError reports a join key that appears more than once in a
// table that must hold one row per key.
type JoinIntegrityError struct {
	Source SourceKey
	Column string
	Value  string
	Lines  []int
}

func (e *JoinIntegrityError) Error() string {
	lines := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = fmt.Sprint(l)
	}
	return fmt.Sprintf("duplicate %s %q in source %s (lines %s)",
		e.Column, e.Value, e.Source, strings.Join(lines, ", "))
}

// Is reports whether target is ErrJoinIntegrity.
func (e *JoinIntegrityError) Is(target error) bool { return target == ErrJoinIntegrity }

// LookupMissError reports a continent outside the fixed vocabulary.
type LookupMissError struct {
	Code      string
	Continent string
	Line      int
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("unknown continent %q for country %s (line %d)", e.Continent, e.Code, e.Line)
}

// Is reports whether target is ErrLookupMiss.
func (e *LookupMissError) Is(target error) bool { return target == ErrLookupMiss }

// UnknownBucketError reports a selection key that is not in the catalog.
type UnknownBucketError struct {
	Dimension Dimension
	Key       string
}

func (e *UnknownBucketError) Error() string {
	return fmt.Sprintf("unknown %s bucket %q", e.Dimension, e.Key)
}

// Is reports whether target is ErrUnknownBucket.
func (e *UnknownBucketError) Is(target error) bool { return target == ErrUnknownBucket }
