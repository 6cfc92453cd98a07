// Package xmlbind is the bidirectional XML binding layer for the SAML 2.0
// object model: each bound type has a Create function producing an element
// tree and a Parse function validating and reading one back.
//
// Parsing is strict: an unexpected element name, a missing required
// attribute, a child of the wrong kind or cardinality, or a version other
// than SAML 2.0 fails the parse rather than yielding a partial object.
package xmlbind

import (
	"time"

	"github.com/beevik/etree"

	"github.com/datagrid-security/saml-authz-api/saml"
)

// Qualified names of the bound SAML elements
var (
	issuerName     = QName{saml.AssertionNamespace, "Issuer", saml.AssertionPrefix}
	nameIDName     = QName{saml.AssertionNamespace, "NameID", saml.AssertionPrefix}
	subjectName    = QName{saml.AssertionNamespace, "Subject", saml.AssertionPrefix}
	conditionsName = QName{saml.AssertionNamespace, "Conditions", saml.AssertionPrefix}
	actionName     = QName{saml.AssertionNamespace, "Action", saml.AssertionPrefix}
	assertionName  = QName{saml.AssertionNamespace, "Assertion", saml.AssertionPrefix}

	attributeName          = QName{saml.AssertionNamespace, "Attribute", saml.AssertionPrefix}
	attributeValueName     = QName{saml.AssertionNamespace, "AttributeValue", saml.AssertionPrefix}
	attributeStatementName = QName{saml.AssertionNamespace, "AttributeStatement", saml.AssertionPrefix}
	authnStatementName     = QName{saml.AssertionNamespace, "AuthnStatement", saml.AssertionPrefix}
	authzStatementName     = QName{saml.AssertionNamespace, "AuthzDecisionStatement", saml.AssertionPrefix}

	statusName     = QName{saml.ProtocolNamespace, "Status", saml.ProtocolPrefix}
	statusCodeName = QName{saml.ProtocolNamespace, "StatusCode", saml.ProtocolPrefix}

	attributeQueryName = QName{saml.ProtocolNamespace, "AttributeQuery", saml.ProtocolPrefix}
	authzQueryName     = QName{saml.ProtocolNamespace, "AuthzDecisionQuery", saml.ProtocolPrefix}
	responseName       = QName{saml.ProtocolNamespace, "Response", saml.ProtocolPrefix}
)

// issueInstantFormat is the wire form of SAML timestamps: UTC with
// millisecond precision and an explicit Z designator
const issueInstantFormat = "2006-01-02T15:04:05.000Z"

func formatInstant(t time.Time) string {
	return t.UTC().Format(issueInstantFormat)
}

func parseInstant(element string, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, NewStructuralError(element,
			"malformed timestamp '"+value+"'")
	}
	return t.UTC(), nil
}

// parseVersion extracts and gates the Version attribute; only SAML 2.0
// passes, checked before any further field extraction
func parseVersion(el *etree.Element) (saml.Version, error) {
	value, err := requiredAttr(el, "Version")
	if err != nil {
		return saml.Version{}, err
	}

	version, err := saml.ParseVersion(value)
	if err != nil {
		return saml.Version{}, NewStructuralError(el.Tag, err.Error())
	}

	if version != saml.Version20 {
		return saml.Version{}, NewUnsupportedVersionError(version.String())
	}

	return version, nil
}
