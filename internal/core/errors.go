package core

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is the fatal configuration error raised at startup when
// the Gemini credential is absent. Every later model call fails fast with it.
var ErrMissingAPIKey = &ConfigurationError{Setting: "gemini.api_key", Reason: "API key is not set"}

// ConfigurationError indicates the service was started without a required
// setting. It is logged once at startup; subsequent calls fail fast.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

// ValidationError indicates the model response could not be parsed or is
// missing required fields. Analysis calls propagate it; a partial result is
// never returned in its place.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("validation error: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NetworkError indicates a transport failure while talking to the model
// endpoint. The caller may retry the same operation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DeviceErrorKind classifies media-device acquisition failures.
type DeviceErrorKind int

const (
	// DevicePermissionDenied means the user or platform refused camera or
	// microphone access.
	DevicePermissionDenied DeviceErrorKind = iota
	// DeviceNotFound means no camera or microphone exists on the device.
	DeviceNotFound
	// DeviceBusy means another application holds the camera or microphone.
	DeviceBusy
	// DeviceUnknown covers causes the platform did not classify.
	DeviceUnknown
)

// String returns a human-readable kind name.
func (k DeviceErrorKind) String() string {
	switch k {
	case DevicePermissionDenied:
		return "permission_denied"
	case DeviceNotFound:
		return "not_found"
	case DeviceBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Message returns the user-facing message for this failure class.
func (k DeviceErrorKind) Message() string {
	switch k {
	case DevicePermissionDenied:
		return "Access denied. Please grant camera and microphone access in your browser settings."
	case DeviceNotFound:
		return "No camera or microphone found on this device."
	case DeviceBusy:
		return "Camera or microphone is currently in use by another app."
	default:
		return "Failed to connect. Please check your internet connection and try again."
	}
}

// DeviceError is raised by the live session engine when media acquisition
// fails. Each kind maps to a distinct user-facing message.
type DeviceError struct {
	Kind  DeviceErrorKind
	Cause string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error (%s): %s", e.Kind, e.Cause)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// AsDeviceError extracts a DeviceError from err, if present.
func AsDeviceError(err error) (*DeviceError, bool) {
	var de *DeviceError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
