package sauna

import "fmt"

// ValidateWrite checks a proposed parameter write against the point
// registry. The value is validated after integer truncation, since the
// device protocol carries integers only and the bridge truncates
// fractional values before transmission.
//
// Parameters:
//   - name: Device point name (e.g., "Temperature_SET")
//   - value: Proposed value, pre-truncation
//
// Returns:
//   - int: The integer value that will be transmitted
//   - error: ErrUnknownPoint, ErrPointReadOnly, or ErrValueOutOfRange
func ValidateWrite(name string, value float64) (int, error) {
	spec, ok := LookupPoint(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPoint, name)
	}
	if !spec.Writable {
		return 0, fmt.Errorf("%w: %q", ErrPointReadOnly, name)
	}

	coerced := int(value)
	if coerced < spec.Min || coerced > spec.Max {
		return 0, fmt.Errorf("%w: %q accepts %d-%d, got %d",
			ErrValueOutOfRange, name, spec.Min, spec.Max, coerced)
	}

	return coerced, nil
}
