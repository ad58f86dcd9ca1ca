package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrMalformedInput ErrorType = iota
	ErrMissingData
	ErrLedger
	ErrTransport
	ErrFileOp
	ErrPackageParse
	ErrInvalidConfig
	ErrOutput
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrMalformedInput:
		return "MalformedInput"
	case ErrMissingData:
		return "MissingData"
	case ErrLedger:
		return "Ledger"
	case ErrTransport:
		return "Transport"
	case ErrFileOp:
		return "FileOp"
	case ErrPackageParse:
		return "PackageParse"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrOutput:
		return "Output"
	default:
		return "Unknown"
	}
}

// Malformed input. These are never recovered from.
var (
	ErrUnsupportedSchemaVersion = errors.New("unsupported ledger schema version")
	ErrUnknownSourceType        = errors.New("unknown source type")
	ErrUnknownImageType         = errors.New("unknown image type")
	ErrBuildIDMismatch          = errors.New("build id mismatch")
	ErrHashMismatch             = errors.New("hash mismatch")
	ErrUnexpectedFamily         = errors.New("unexpected OS family")
	ErrMalformedFilename        = errors.New("malformed package file name")
	ErrMalformedRecord          = errors.New("malformed ledger record")
)

// SbomError represents an error during SBOM generation
type SbomError struct {
	Type ErrorType
	Item string
	Err  error
}

// Error implements the error interface
func (e *SbomError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Item, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *SbomError) Unwrap() error {
	return e.Err
}

// NewError wraps err into an SbomError of the given type.
func NewError(t ErrorType, item string, err error) *SbomError {
	return &SbomError{Type: t, Item: item, Err: err}
}

// IsType reports whether any SbomError in err's chain has the given type.
func IsType(err error, t ErrorType) bool {
	var se *SbomError
	for err != nil {
		if !errors.As(err, &se) {
			return false
		}
		if se.Type == t {
			return true
		}
		err = se.Err
	}
	return false
}
