// Package perception turns a free-text instruction into a transform task.
//
// Resolution is a best-effort heuristic, not a grammar. The transform is
// picked by keyword; the payload is extracted by the first rule that
// applies, in this order:
//
//  1. quoted text (parsed as JSON when it holds {...}, else the literal)
//  2. an unquoted {...} slice (parsed as JSON, else the raw slice)
//  3. a true/false keyword
//  4. the remaining words, minus leading verbs and trailing connectives
package perception

import (
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"

	"shapeshift/internal/logging"
	"shapeshift/internal/transform"
)

// ErrEmptyInstruction is returned for blank input.
var ErrEmptyInstruction = errors.New("empty instruction")

// PayloadRule names the rule that produced a task's payload.
type PayloadRule string

const (
	RuleQuotedJSON PayloadRule = "quoted_json"
	RuleQuoted     PayloadRule = "quoted"
	RuleBraceJSON  PayloadRule = "brace_json"
	RuleBraceRaw   PayloadRule = "brace_raw"
	RuleBoolean    PayloadRule = "boolean"
	RuleText       PayloadRule = "text"
)

// DefaultTransform is used when no keyword matches.
const DefaultTransform = transform.Uppercase

// Task is a resolved instruction.
type Task struct {
	Instruction string         `json:"instruction" yaml:"instruction"`
	Transform   transform.Kind `json:"transform" yaml:"transform"`
	// Matched is false when the transform fell back to DefaultTransform.
	Matched bool        `json:"matched" yaml:"matched"`
	Payload any         `json:"payload" yaml:"payload"`
	Rule    PayloadRule `json:"rule" yaml:"rule"`
}

// KeywordEntry maps a pattern to a transform.
type KeywordEntry struct {
	Kind    transform.Kind
	Pattern *regexp.Regexp
}

// Keywords is checked against the instruction with any payload removed.
// When several match, the earliest occurrence wins.
var Keywords = []KeywordEntry{
	{Kind: transform.Uppercase, Pattern: regexp.MustCompile(`(?i)upper`)},
	{Kind: transform.Reverse, Pattern: regexp.MustCompile(`(?i)revers`)},
	{Kind: transform.JSONify, Pattern: regexp.MustCompile(`(?i)json`)},
	{Kind: transform.Base64, Pattern: regexp.MustCompile(`(?i)base\s?64`)},
}

var (
	booleanPattern = regexp.MustCompile(`(?i)\b(true|false)\b`)

	leadingWords = map[string]bool{
		"please": true, "transform": true, "convert": true, "apply": true,
		"make": true, "turn": true, "encode": true, "format": true,
		"the": true, "string": true, "text": true, "value": true,
	}
	trailingConnectives = map[string]bool{
		"transform": true, "to": true, "into": true, "using": true, "with": true,
	}
)

// Resolve picks a transform and payload for text.
func Resolve(text string) (Task, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Task{}, ErrEmptyInstruction
	}

	payload, rule, rest := extractPayload(trimmed)
	kind, matched := matchTransform(rest)

	logging.PerceptionDebug("resolved %q -> transform=%s (matched=%v) rule=%s", trimmed, kind, matched, rule)
	logging.Audit().InstructionResolved(string(kind), matched, string(rule))

	return Task{
		Instruction: trimmed,
		Transform:   kind,
		Matched:     matched,
		Payload:     payload,
		Rule:        rule,
	}, nil
}

// extractPayload applies the payload rules in order. rest is the text left
// once the payload is cut out, used for keyword matching.
func extractPayload(text string) (payload any, rule PayloadRule, rest string) {
	if start, end, ok := quotedSpan(text); ok {
		literal := text[start+1 : end]
		rest = text[:start] + " " + text[end+1:]
		if open, closing := strings.Index(literal, "{"), strings.LastIndex(literal, "}"); open >= 0 && closing > open {
			if v, ok := parseJSON(literal[open : closing+1]); ok {
				return v, RuleQuotedJSON, rest
			}
		}
		return literal, RuleQuoted, rest
	}

	if open := strings.Index(text, "{"); open >= 0 {
		closing := strings.LastIndex(text, "}")
		end := len(text)
		if closing > open {
			end = closing + 1
		}
		slice := text[open:end]
		rest = text[:open] + " " + text[end:]
		if v, ok := parseJSON(slice); ok {
			return v, RuleBraceJSON, rest
		}
		return slice, RuleBraceRaw, rest
	}

	if m := booleanPattern.FindStringIndex(text); m != nil {
		word := strings.ToLower(text[m[0]:m[1]])
		return word == "true", RuleBoolean, text[:m[0]] + " " + text[m[1]:]
	}

	return strippedText(text), RuleText, text
}

// quotedSpan finds the first double or single quote and the last matching
// quote of the same kind. Embedded quotes of that kind stay in the literal.
// A quote after an unquoted '{' belongs to that JSON and does not count.
func quotedSpan(text string) (start, end int, ok bool) {
	start = strings.IndexAny(text, `"'`)
	if start < 0 {
		return 0, 0, false
	}
	if brace := strings.IndexByte(text, '{'); brace >= 0 && brace < start {
		return 0, 0, false
	}
	end = strings.LastIndexByte(text, text[start])
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func parseJSON(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// strippedText drops leading verbs and keyword words, and trailing
// connectives and keyword words.
func strippedText(text string) string {
	words := strings.Fields(text)
	isNoise := func(w string, set map[string]bool) bool {
		lw := strings.ToLower(strings.Trim(w, ".,:;!?"))
		if set[lw] {
			return true
		}
		_, matched := matchTransform(lw)
		return matched
	}

	for len(words) > 0 && isNoise(words[0], leadingWords) {
		words = words[1:]
	}
	for len(words) > 0 && isNoise(words[len(words)-1], trailingConnectives) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// matchTransform returns the transform whose keyword occurs earliest in
// text, or DefaultTransform when none does.
func matchTransform(text string) (transform.Kind, bool) {
	type hit struct {
		kind transform.Kind
		at   int
	}
	var hits []hit
	for _, kw := range Keywords {
		if loc := kw.Pattern.FindStringIndex(text); loc != nil {
			hits = append(hits, hit{kind: kw.Kind, at: loc[0]})
		}
	}
	if len(hits) == 0 {
		return DefaultTransform, false
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at < hits[j].at })
	return hits[0].kind, true
}
