package errors

import "errors"

// Code identifies a structured error type used across the application.
type Code string

const (
	// Generic codes
	CodeUnknown Code = "unknown"

	// Version resolution errors
	CodeMalformedVersion    Code = "malformed_version"
	CodeNoCandidateVersions Code = "no_candidate_versions"
	CodeInvalidChannel      Code = "invalid_channel"

	// Git collaborator errors
	CodeGitNotFound         Code = "git_not_found"
	CodeGitFailed           Code = "git_failed"
	CodeInvalidGitURL       Code = "invalid_git_url"
	CodeGitURLMissing       Code = "git_url_missing"
	CodeAllStrategiesFailed Code = "all_strategies_failed"

	// Installation state errors
	CodeNotInstalled       Code = "not_installed"
	CodeConfigurationError Code = "configuration_error"
	CodeHistoryFailed      Code = "history_failed"
)

// Error represents a structured error with a machine-readable code plus message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// CodeOf walks the error chain and returns the first structured code found.
func CodeOf(err error) Code {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
