// Package validation turns request DTO validation failures into the flat,
// dotted-path error map the API exposes.  Failures form a tree (nested DTOs
// produce child nodes); the normalizer reduces the tree to one message per
// field, picking the constraint with the best priority at each leaf.
package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Constraint is a single violated rule on a field.  Priority orders multiple
// violations on the same field: a lower value wins, zero means unset and
// always loses to any set priority.  TranslationKey travels with the message
// so a localization layer could resolve it later; it is not resolved here.
type Constraint struct {
	Name           string
	Message        string
	Priority       int
	TranslationKey string
}

// FieldError is one node of the validation failure tree.  Leaf nodes carry
// constraints; branch nodes carry children for nested objects.  Target is the
// DTO type name and is only meaningful on root nodes.
type FieldError struct {
	Property    string
	Constraints []Constraint
	Children    []*FieldError
	Target      string
}

// Result is the normalized form consumed by the error responder.
type Result struct {
	// ErrorMessage is the message of the first resolved field.
	ErrorMessage string
	// Errors maps dotted field paths to a single message each.
	Errors map[string]string
	// TargetDto names the DTO type the first failure was reported against.
	TargetDto string
}

const fallbackMessage = "Request failed."

// Normalize flattens a validation failure tree into a Result.  Every leaf is
// represented exactly once under its dotted path.  ErrorMessage is whatever
// the first-seen path holds once the whole tree has been walked, so a later
// duplicate path overwrites the headline message the same way it overwrites
// the map entry.
func Normalize(fieldErrors []*FieldError) Result {
	res := Result{Errors: make(map[string]string, len(fieldErrors))}
	if len(fieldErrors) > 0 {
		res.TargetDto = fieldErrors[0].Target
	}
	w := walker{res: &res}
	for _, fe := range fieldErrors {
		w.flatten(fe, fe.Property)
	}
	if w.firstPath != "" {
		res.ErrorMessage = res.Errors[w.firstPath]
	} else {
		res.ErrorMessage = fallbackMessage
	}
	return res
}

type walker struct {
	res       *Result
	firstPath string
}

// flatten walks one node.  When descending into a child, the child's property
// is appended to the path only if the accumulated path does not already
// contain it as a substring.  That containment check is deliberately a
// substring test, not a segment comparison: it mirrors how duplicate segment
// names in nested DTOs have always been collapsed, and renaming a field so it
// is no longer a substring of its parent path changes the emitted keys.
func (w *walker) flatten(fe *FieldError, path string) {
	if len(fe.Children) > 0 {
		for _, child := range fe.Children {
			childPath := path
			if !strings.Contains(path, child.Property) {
				childPath = path + "." + child.Property
			}
			w.flatten(child, childPath)
		}
		return
	}

	if w.firstPath == "" {
		w.firstPath = path
	}
	w.res.Errors[path] = pickMessage(fe.Constraints)
}

// pickMessage selects one message out of a field's violated constraints: the
// lowest set priority wins; with no priorities set, the first constraint in
// insertion order is used.  The chosen message gets its first letter
// capitalized.
func pickMessage(constraints []Constraint) string {
	if len(constraints) == 0 {
		return "Validation failed"
	}
	best := -1
	for i, c := range constraints {
		if c.Priority <= 0 {
			continue
		}
		if best == -1 || c.Priority < constraints[best].Priority {
			best = i
		}
	}
	if best == -1 {
		best = 0
	}
	return capitalize(constraints[best].Message)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
