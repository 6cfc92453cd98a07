package saml

import "time"

// Issuer identifies the party that issued a query, response or assertion
type Issuer struct {
	Format string
	Value  string
}

// NameID is a subject name identifier
type NameID struct {
	Format string
	Value  string
}

// Subject is the principal a statement or query is about.
// It carries exactly one name identifier.
type Subject struct {
	NameID NameID
}

// StatusCode carries a top-level status code URI
type StatusCode struct {
	Value string
}

// Status is the protocol-level status of a response.
// It carries exactly one status code.
type Status struct {
	StatusCode StatusCode
}

// Condition is an extension condition attached to a Conditions element.
// No concrete condition kinds are serializable yet; a non-empty extension
// list is rejected loudly at serialization time.
type Condition interface {
	ConditionKind() string
}

// Conditions bounds the validity of an assertion to a time window
type Conditions struct {
	NotBefore    time.Time
	NotOnOrAfter time.Time

	// Extension conditions; declared but not yet serializable
	Conditions []Condition
}

// Action is a single operation on a resource, qualified by an action
// namespace (e.g. the HTTP verb set)
type Action struct {
	Namespace string
	Value     string
}

// AttributeValue is the polymorphic payload of an Attribute.
// Each variant identifies itself with the wire xsi:type identifier used
// both for codec dispatch and for serialization.
type AttributeValue interface {
	TypeID() string
}

// XSStringTypeID is the xsi:type identifier for plain string values
const XSStringTypeID = "xs:string"

// XSString is an xs:string typed attribute value
type XSString struct {
	Value string
}

// TypeID implements AttributeValue
func (XSString) TypeID() string {
	return XSStringTypeID
}

// Earth System Grid group/role attribute value vocabulary.
// This is a deployment-specific extension type, not part of SAML core.
const (
	GroupRoleNamespace = "http://www.earthsystemgrid.org/esg"
	GroupRolePrefix    = "esg"
	GroupRoleTypeID    = "esg:groupRole"
)

// GroupRole is the Earth System Grid custom group/role attribute value
type GroupRole struct {
	Group string
	Role  string
}

// TypeID implements AttributeValue
func (GroupRole) TypeID() string {
	return GroupRoleTypeID
}

// Attribute is a named, optionally typed collection of attribute values
type Attribute struct {
	Name         string
	FriendlyName string
	NameFormat   string
	Values       []AttributeValue
}

// AttributeStatement asserts a set of attributes about a subject
type AttributeStatement struct {
	Attributes []Attribute
}

// AuthzDecisionStatement asserts a Permit/Deny/Indeterminate decision about
// a set of actions on a resource
type AuthzDecisionStatement struct {
	Resource string
	Decision Decision
	Actions  []Action
}

// AuthnStatement asserts an act of authentication.
// Modeled for completeness; its serialization path is not implemented and
// fails loudly rather than dropping data.
type AuthnStatement struct {
	AuthnInstant time.Time
	SessionIndex string
}

// Assertion is a bundle of statements about a subject, bounded by an
// optional validity window
type Assertion struct {
	ID           string
	IssueInstant time.Time
	Version      Version

	Issuer     *Issuer
	Subject    *Subject
	Conditions *Conditions

	// Advice content is declared but not yet serializable
	Advice []string

	AttributeStatements     []AttributeStatement
	AuthnStatements         []AuthnStatement
	AuthzDecisionStatements []AuthzDecisionStatement
}

// AttributeQuery requests attribute values for a subject
type AttributeQuery struct {
	ID           string
	IssueInstant time.Time
	Version      Version

	Issuer     Issuer
	Subject    Subject
	Attributes []Attribute
}

// AuthzDecisionQuery asks whether a subject may perform the given actions
// on a resource
type AuthzDecisionQuery struct {
	ID           string
	IssueInstant time.Time
	Version      Version

	Issuer   Issuer
	Subject  Subject
	Resource string
	Actions  []Action
}

// Response answers a query, correlated to it by InResponseTo
type Response struct {
	ID           string
	InResponseTo string
	IssueInstant time.Time
	Version      Version

	Issuer     *Issuer
	Status     Status
	Subject    *Subject
	Assertions []Assertion
}
