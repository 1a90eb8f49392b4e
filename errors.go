package virnet

// errors.go holds the error taxonomy of the model.  Fatal configuration
// problems (bad parameters, impossible samples) and the recoverable
// network saturation condition each have a sentinel value so callers can
// test with errors.Is, and a struct type carrying the details.

import (
	"errors"
	"fmt"
)

var (
	// ErrSampleSize is matched by a *SampleSizeError
	ErrSampleSize = errors.New("sample larger than population")

	// ErrNetworkSaturated is matched by a *NetworkSaturatedError
	ErrNetworkSaturated = errors.New("network saturated")

	// ErrInvalidParameter is matched by an *InvalidParameterError
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotSetup is returned when the model is stepped before Setup
	ErrNotSetup = errors.New("model not set up")

	// ErrAlreadySetup is returned by a second call to Setup
	ErrAlreadySetup = errors.New("model already set up")
)

// SampleSizeError reports a request for more distinct elements than a population holds
type SampleSizeError struct {
	Requested  int
	Population int
}

func (e *SampleSizeError) Error() string {
	return fmt.Sprintf("cannot sample %d distinct elements from a population of %d", e.Requested, e.Population)
}

// Is lets errors.Is(err, ErrSampleSize) succeed
func (e *SampleSizeError) Is(target error) bool {
	return target == ErrSampleSize
}

// NetworkSaturatedError reports that the network builder stopped before
// reaching its target edge count because no unconnected pair remains.
// The partial network is kept.
type NetworkSaturatedError struct {
	Target int
	Built  int
}

func (e *NetworkSaturatedError) Error() string {
	return fmt.Sprintf("network saturated: built %d of %d target edges", e.Built, e.Target)
}

// Is lets errors.Is(err, ErrNetworkSaturated) succeed
func (e *NetworkSaturatedError) Is(target error) bool {
	return target == ErrNetworkSaturated
}

// InvalidParameterError names a construction parameter that is out of range
type InvalidParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidParameter) succeed
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// ReportErrs gathers the non-nil members of errs into a single error.
// nil is returned if every member is nil.
func ReportErrs(errs []error) error {
	kept := make([]error, 0)
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	return errors.Join(kept...)
}
