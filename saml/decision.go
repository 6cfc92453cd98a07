package saml

import "fmt"

// Decision is the verdict carried by an authorization decision statement
type Decision string

// Decision values defined by SAML 2.0 core section 2.7.4.1
const (
	DecisionPermit        Decision = "Permit"
	DecisionDeny          Decision = "Deny"
	DecisionIndeterminate Decision = "Indeterminate"
)

// ParseDecision parses the wire form of a Decision attribute
func ParseDecision(value string) (Decision, error) {
	switch Decision(value) {
	case DecisionPermit, DecisionDeny, DecisionIndeterminate:
		return Decision(value), nil
	default:
		return "", fmt.Errorf("unknown SAML decision value '%s'", value)
	}
}

// Valid reports whether the decision is one of the three defined values
func (d Decision) Valid() bool {
	_, err := ParseDecision(string(d))
	return err == nil
}
