package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a network-related error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "fetch_ticker", "fetch_orderbook")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrInvalidInput is returned when a caller passes a non-positive price,
	// rate, or notional. Deterministic and caller-fixable, never transient.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable is returned when an external fetch fails or yields no
	// usable data. Scanning skips the affected asset and continues.
	ErrUnavailable = errors.New("data unavailable")

	// ErrInsufficientDepth is returned when a requested fill size exceeds
	// visible order-book depth. Distinct from ErrUnavailable so callers can
	// retry with a deeper book query.
	ErrInsufficientDepth = errors.New("insufficient order book depth")

	// ErrNoCandidate is returned when a scan or selection finds zero
	// qualifying assets. A normal market outcome, not a fault.
	ErrNoCandidate = errors.New("no qualifying candidate")
)
