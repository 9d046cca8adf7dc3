package sdk

import "errors"

var (
	// ErrInvalidKey is returned when a capability key is blank.
	ErrInvalidKey = errors.New("invalid capability key")

	// ErrDuplicateCapability is returned when a key is registered twice.
	ErrDuplicateCapability = errors.New("capability already registered")

	// ErrNilProvider is returned when a capability is registered without a provider.
	ErrNilProvider = errors.New("capability provider is nil")

	// ErrNilDefinition is returned when a capability is registered without a definition.
	ErrNilDefinition = errors.New("capability definition is nil")

	// ErrCircuitOpen is returned when a provider's circuit breaker is open.
	ErrCircuitOpen = errors.New("capability circuit breaker is open")
)

// CapabilityError wraps an error with the capability and operation it came from.
type CapabilityError struct {
	Key Key
	Op  string
	Err error
}

func (e *CapabilityError) Error() string {
	if e.Key != "" {
		return "capability " + string(e.Key) + ": " + e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// NewCapabilityError creates a new CapabilityError.
func NewCapabilityError(key Key, op string, err error) *CapabilityError {
	return &CapabilityError{Key: key, Op: op, Err: err}
}
