package core

import "errors"

// ErrUnknownOperation is returned by the structure tool for an operation
// other than analyze, transform or wrap.
var ErrUnknownOperation = errors.New("unknown structural operation")
