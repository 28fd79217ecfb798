package transform

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// validatorEnv is the environment a validation expression is evaluated in.
type validatorEnv struct {
	Value    any            `expr:"value"`
	Type     string         `expr:"type"`
	Metadata map[string]any `expr:"metadata"`
}

// ExprValidator compiles an expr-lang boolean expression into a Validator.
// The expression sees the envelope as value, type and metadata, e.g.
//
//	type == "string" && len(value) > 3
//	metadata.wasJson == true
//
// A runtime evaluation error counts as a rejection.
func ExprValidator(source string) (Validator, error) {
	program, err := expr.Compile(source, expr.Env(validatorEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValidator, err)
	}
	return func(e Envelope) bool {
		return evalBool(program, e)
	}, nil
}

func evalBool(program *vm.Program, e Envelope) bool {
	out, err := expr.Run(program, validatorEnv{
		Value:    e.Value,
		Type:     string(e.Type),
		Metadata: e.Metadata,
	})
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}
