package property

import "errors"

// Domain errors for the property package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, property.ErrUnknownProperty) {
//	    // handle typo in property name
//	}
var (
	// ErrUnknownProperty is returned when a name matches no device or bus descriptor.
	ErrUnknownProperty = errors.New("property: unknown property")

	// ErrParse is returned when a string value is malformed for the property type.
	ErrParse = errors.New("property: invalid value")

	// ErrTypeMismatch is returned when a typed Set uses the wrong Go type.
	ErrTypeMismatch = errors.New("property: type mismatch")

	// ErrNotSettable is returned when a property type has no parser.
	ErrNotSettable = errors.New("property: not settable")

	// ErrUnresolvedRef is returned when a named reference matches nothing in its table.
	ErrUnresolvedRef = errors.New("property: unresolved reference")
)
