package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error wraps a validation failure tree so the error responder can recognize
// request validation failures and run them through Normalize.
type Error struct {
	FieldErrors []*FieldError
}

func (e *Error) Error() string {
	paths := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		paths = append(paths, fe.Property)
	}
	return "validation failed: " + strings.Join(paths, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their json names so error paths match payloads.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// constraintPriority ranks constraints when several fail on one field; lower
// wins.  Presence checks outrank format checks which outrank size checks.
var constraintPriority = map[string]int{
	"required": 1,
	"email":    2,
	"min":      3,
	"max":      3,
	"gte":      3,
	"lte":      3,
}

// ValidateStruct validates a DTO and returns a *Error holding the failure
// tree, or nil when the DTO is valid.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	return &Error{FieldErrors: buildTree(s, verrs)}
}

// buildTree converts validator namespaces ("RegisterRequest.office.name")
// into the FieldError tree Normalize expects.  The leading namespace segment
// is the DTO type name and becomes Target on the roots.
func buildTree(s any, verrs validator.ValidationErrors) []*FieldError {
	target := reflect.Indirect(reflect.ValueOf(s)).Type().Name()

	var roots []*FieldError
	for _, fe := range verrs {
		segments := strings.Split(fe.Namespace(), ".")
		if len(segments) > 1 {
			segments = segments[1:] // drop the DTO type name
		}
		node := findOrAdd(&roots, segments[0], target)
		for _, seg := range segments[1:] {
			node = findOrAdd(&node.Children, seg, "")
		}
		node.Constraints = append(node.Constraints, Constraint{
			Name:           fe.Tag(),
			Message:        constraintMessage(fe),
			Priority:       constraintPriority[fe.Tag()],
			TranslationKey: "validation." + fe.Tag(),
		})
	}
	return roots
}

func findOrAdd(nodes *[]*FieldError, property, target string) *FieldError {
	for _, n := range *nodes {
		if n.Property == property {
			return n
		}
	}
	n := &FieldError{Property: property, Target: target}
	*nodes = append(*nodes, n)
	return n
}

// constraintMessage renders a human message for a failed constraint.  The
// message starts lowercase; Normalize capitalizes whichever one it picks.
func constraintMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", field)
	case "email":
		return fmt.Sprintf("%s must be an email", field)
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must not be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
