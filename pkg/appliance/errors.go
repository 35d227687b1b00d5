package appliance

import "fmt"

// ErrorKind classifies why a serial fetch failed.
type ErrorKind int

const (
	// KindConnectivity covers refused connections, unreachable hosts and
	// request timeouts.
	KindConnectivity ErrorKind = iota
	// KindAuth covers 401 and 403 responses.
	KindAuth
	// KindParse covers 2xx responses whose body is not JSON or lacks the
	// serial field.
	KindParse
	// KindHTTP covers every other non-2xx status.
	KindHTTP
)

// FetchError is the typed failure of one serial fetch. The collector maps it
// to a results-table marker instead of aborting the run.
type FetchError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindConnectivity:
		return fmt.Sprintf("connection failed: %v", e.Err)
	case KindAuth:
		return fmt.Sprintf("authentication rejected (HTTP %d)", e.Status)
	case KindParse:
		if e.Err != nil {
			return fmt.Sprintf("serial not found in response: %v", e.Err)
		}
		return "serial not found in response"
	default:
		return fmt.Sprintf("unexpected HTTP status %d", e.Status)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Marker returns the value recorded in the results table for this failure.
// None of these reads as a plausible serial number.
func (e *FetchError) Marker() string {
	switch e.Kind {
	case KindConnectivity:
		return "ERROR: CONNECTION FAILED"
	case KindAuth:
		return fmt.Sprintf("ERROR: AUTH FAILED (%d)", e.Status)
	case KindParse:
		return "SN_NOT_FOUND"
	default:
		return fmt.Sprintf("ERROR: HTTP %d", e.Status)
	}
}
