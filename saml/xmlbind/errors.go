package xmlbind

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotImplemented marks binding paths that are schema-modeled but have no
// serialization support yet. These fail loudly rather than dropping data.
var ErrNotImplemented = errors.New("binding path not implemented")

// UnexpectedElementError is returned when a parsed element's local name does
// not match the name the codec expects
type UnexpectedElementError struct {
	Expected string
	Actual   string
}

// NewUnexpectedElementError constructs a new UnexpectedElementError
func NewUnexpectedElementError(expected string, actual string) *UnexpectedElementError {
	return &UnexpectedElementError{
		Expected: expected,
		Actual:   actual,
	}
}

func (e *UnexpectedElementError) Error() string {
	return fmt.Sprintf("expecting '%s' element; found '%s'", e.Expected, e.Actual)
}

// MissingAttributeError is returned when a required XML attribute is absent
type MissingAttributeError struct {
	Element   string
	Attribute string
}

// NewMissingAttributeError constructs a new MissingAttributeError
func NewMissingAttributeError(element string, attribute string) *MissingAttributeError {
	return &MissingAttributeError{
		Element:   element,
		Attribute: attribute,
	}
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("no '%s' attribute found in '%s' element",
		e.Attribute, e.Element)
}

// StructuralError is returned when child element cardinality, order or kind
// does not match the SAML schema shape
type StructuralError struct {
	Element string
	Reason  string
}

// NewStructuralError constructs a new StructuralError
func NewStructuralError(element string, reason string) *StructuralError {
	return &StructuralError{
		Element: element,
		Reason:  reason,
	}
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("malformed '%s' element: %s", e.Element, e.Reason)
}

// UnsupportedVersionError is returned when a parsed document carries a SAML
// version other than 2.0. It is checked before any further field extraction.
type UnsupportedVersionError struct {
	Version string
}

// NewUnsupportedVersionError constructs a new UnsupportedVersionError
func NewUnsupportedVersionError(version string) *UnsupportedVersionError {
	return &UnsupportedVersionError{
		Version: version,
	}
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("parsing is implemented for SAML version 2.0 only; "+
		"version '%s' is not supported", e.Version)
}

// UnregisteredCodecError is returned when no codec is registered for an
// attribute value variant or wire type identifier
type UnregisteredCodecError struct {
	TypeID string
}

// NewUnregisteredCodecError constructs a new UnregisteredCodecError
func NewUnregisteredCodecError(typeID string) *UnregisteredCodecError {
	return &UnregisteredCodecError{
		TypeID: typeID,
	}
}

func (e *UnregisteredCodecError) Error() string {
	return fmt.Sprintf("no codec registered for attribute value type '%s'",
		e.TypeID)
}

// TypeMismatchError is returned when a codec is handed a value of the wrong
// variant. This indicates a programming error, not recoverable input.
type TypeMismatchError struct {
	Expected string
	Actual   string
}

// NewTypeMismatchError constructs a new TypeMismatchError
func NewTypeMismatchError(expected string, actual string) *TypeMismatchError {
	return &TypeMismatchError{
		Expected: expected,
		Actual:   actual,
	}
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("expecting value of type '%s'; got '%s'",
		e.Expected, e.Actual)
}

// NamespaceError is returned when serialization references a namespace with
// no registered prefix
type NamespaceError struct {
	Prefix string
}

// NewNamespaceError constructs a new NamespaceError
func NewNamespaceError(prefix string) *NamespaceError {
	return &NamespaceError{
		Prefix: prefix,
	}
}

func (e *NamespaceError) Error() string {
	return fmt.Sprintf("no namespace registered for prefix '%s'", e.Prefix)
}

// IsStructural reports whether err is a client-input parse error: the wire
// XML does not match the expected SAML shape. The transport maps these to a
// client-side fault; everything else is a service-side failure.
func IsStructural(err error) bool {
	var unexpected *UnexpectedElementError
	var missing *MissingAttributeError
	var structural *StructuralError
	var version *UnsupportedVersionError
	return errors.As(err, &unexpected) ||
		errors.As(err, &missing) ||
		errors.As(err, &structural) ||
		errors.As(err, &version)
}
