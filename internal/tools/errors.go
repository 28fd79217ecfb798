package tools

import "errors"

// Registration errors are returned by Register; execution errors are
// wrapped with the tool name and carried in the failed Result.
var (
	// ErrToolNotFound means Execute was called with an unregistered name.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolNameEmpty rejects a tool registered without a name.
	ErrToolNameEmpty = errors.New("tool name cannot be empty")

	// ErrToolExecuteNil rejects a tool registered without an Execute func.
	ErrToolExecuteNil = errors.New("tool execute function cannot be nil")

	// ErrToolAlreadyRegistered rejects a second tool with the same name.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrMissingRequiredArg names an argument listed in Schema.Required
	// that the caller left out.
	ErrMissingRequiredArg = errors.New("missing required argument")

	// ErrInvalidArgType means an argument does not match its schema type,
	// or a tool rejected an argument's shape (a path that is not a list
	// of strings, a transform chain that is not an array).
	ErrInvalidArgType = errors.New("invalid argument type")

	// ErrUnknownCategory is returned by ParseCategory.
	ErrUnknownCategory = errors.New("unknown tool category")
)
