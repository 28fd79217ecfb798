package transform

import (
	"fmt"
	"time"
)

// Validator decides whether a finished envelope is acceptable.
type Validator func(Envelope) bool

// ChainMetadata describes a chain for reporting.
type ChainMetadata struct {
	Name       string `json:"name" yaml:"name"`
	Complexity int    `json:"complexity" yaml:"complexity"`
	Steps      int    `json:"steps" yaml:"steps"`
}

// Chain is an ordered list of transforms applied to an initial envelope.
// A nil Validation means no validation.
type Chain struct {
	Transforms []Func
	Initial    Envelope
	Validation Validator
	Metadata   ChainMetadata
}

// Postprocess is appended to every chain by Compose. It marks the envelope
// processed and records the completion time in unix milliseconds; the value
// is left untouched.
func Postprocess(e Envelope) (Envelope, error) {
	out := e.With(e.Value, e.Type)
	out.Metadata[MetaProcessed] = true
	out.Metadata[MetaCompletedAt] = time.Now().UnixMilli()
	return out, nil
}

// Compose folds the chain's transforms left to right over its initial
// envelope, then applies Postprocess, then runs the validator. A transform
// error stops the fold; a rejected result yields ErrValidationFailure.
func Compose(chain Chain) (Envelope, error) {
	current := chain.Initial
	if current.Metadata == nil {
		current.Metadata = map[string]any{}
	}

	steps := append(chain.Transforms[:len(chain.Transforms):len(chain.Transforms)], Postprocess)
	for i, fn := range steps {
		next, err := fn(current)
		if err != nil {
			return Envelope{}, fmt.Errorf("transform %d of chain %q: %w", i, chain.Metadata.Name, err)
		}
		current = next
	}

	if chain.Validation != nil && !chain.Validation(current) {
		return Envelope{}, fmt.Errorf("%w: chain %q", ErrValidationFailure, chain.Metadata.Name)
	}
	return current, nil
}

// ChainOption configures BuildChain.
type ChainOption func(*Chain)

// WithName sets the chain name.
func WithName(name string) ChainOption {
	return func(c *Chain) { c.Metadata.Name = name }
}

// WithComplexity records the complexity the chain was built for.
func WithComplexity(n int) ChainOption {
	return func(c *Chain) { c.Metadata.Complexity = n }
}

// WithValidator sets the chain validator.
func WithValidator(v Validator) ChainOption {
	return func(c *Chain) { c.Validation = v }
}

// BuildChain resolves transform names into a chain over initial. Unknown
// names yield ErrUnknownTransformType.
func BuildChain(names []string, initial Envelope, opts ...ChainOption) (Chain, error) {
	chain := Chain{
		Transforms: make([]Func, 0, len(names)),
		Initial:    initial,
		Metadata:   ChainMetadata{Name: "chain", Steps: len(names)},
	}
	for _, name := range names {
		kind, err := ParseKind(name)
		if err != nil {
			return Chain{}, err
		}
		fn, err := kind.Func()
		if err != nil {
			return Chain{}, err
		}
		chain.Transforms = append(chain.Transforms, fn)
	}
	for _, opt := range opts {
		opt(&chain)
	}
	return chain, nil
}
