package rating

import (
	"errors"
	"strings"
)

const (
	// MsgGenericFailure is delivered when a failure carries no message.
	MsgGenericFailure = "Something went wrong. The AI might be overwhelmed by your aura."
	// MsgAnalysisFailed is the user-facing text of every RemoteError.
	MsgAnalysisFailed = "Failed to analyze image. Please try again with a clearer photo."
	// MsgMissingCredential is the user-facing text of ConfigurationError.
	MsgMissingCredential = "API Key is missing. Please check your environment variables."
)

// ConfigurationError means the analyzer cannot run until it is fixed
// externally, e.g. a missing API key.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message == "" {
		return MsgMissingCredential
	}
	return e.Message
}

// ErrNotConfigured is returned by analyzers that have no credential.
var ErrNotConfigured error = &ConfigurationError{Message: MsgMissingCredential}

// RemoteError wraps a network, service or reply-parsing failure. Error
// returns the user-facing message; the cause is kept for logs.
type RemoteError struct {
	Message string
	Cause   error
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return MsgAnalysisFailed
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error { return e.Cause }

// NewRemoteError wraps cause with the standard user-facing message.
func NewRemoteError(cause error) *RemoteError {
	return &RemoteError{Message: MsgAnalysisFailed, Cause: cause}
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// FailureMessage maps an analyzer error to the message delivered by Fail.
func FailureMessage(err error) string {
	if err == nil {
		return MsgGenericFailure
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return MsgGenericFailure
	}
	return msg
}
