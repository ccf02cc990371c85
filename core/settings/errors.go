package settings

import (
	"errors"
	"fmt"
)

// Kind classifies a probe failure.
type Kind string

const (
	// KindTransport means the request could not be sent or no response was received.
	KindTransport Kind = "transport"
	// KindStatus means the server answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindDecode means the body is not the expected JSON document.
	KindDecode Kind = "decode"
	// KindInvalid means the document decoded but carries unusable values.
	KindInvalid Kind = "invalid"
)

// SettingsError is returned by every failed probe.
type SettingsError struct {
	Kind       Kind
	URL        string
	StatusCode int
	Err        error
}

func (e *SettingsError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("settings request to %s returned status %d", e.URL, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("settings %s error for %s: %v", e.Kind, e.URL, e.Err)
		}
		return fmt.Sprintf("settings %s error for %s", e.Kind, e.URL)
	}
}

func (e *SettingsError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *SettingsError of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *SettingsError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
