package transform

import "errors"

// Transform errors.
var (
	// ErrUnknownTransformType is returned when a transform name is not registered.
	ErrUnknownTransformType = errors.New("unknown transform type")

	// ErrValidationFailure is returned when a chain result fails its validator.
	ErrValidationFailure = errors.New("validation failed")

	// ErrMalformedInput marks input that could not be decoded. jsonify records
	// it in metadata instead of returning it.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidValidator is returned when a validation expression does not
	// compile or does not yield a boolean.
	ErrInvalidValidator = errors.New("invalid validator")
)
