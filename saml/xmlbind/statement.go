package xmlbind

import (
	"github.com/beevik/etree"
	"github.com/pkg/errors"

	"github.com/datagrid-security/saml-authz-api/saml"
)

// CreateAttribute makes a saml:Attribute element, dispatching each value
// through the registry. Optional attributes are omitted entirely when absent
// rather than emitted empty.
func CreateAttribute(attribute saml.Attribute, registry *AttributeValueRegistry) (*etree.Element, error) {
	el := newElement(attributeName)

	if attribute.FriendlyName != "" {
		el.CreateAttr("FriendlyName", attribute.FriendlyName)
	}
	if attribute.Name != "" {
		el.CreateAttr("Name", attribute.Name)
	}
	if attribute.NameFormat != "" {
		el.CreateAttr("NameFormat", attribute.NameFormat)
	}

	for _, value := range attribute.Values {
		codec, err := registry.ForValue(value)
		if err != nil {
			return nil, err
		}

		valueElem, err := codec.Create(value)
		if err != nil {
			return nil, err
		}
		el.AddChild(valueElem)
	}

	return el, nil
}

// ParseAttribute reads a saml:Attribute element, dispatching each
// AttributeValue child on its xsi:type through the registry
func ParseAttribute(el *etree.Element, registry *AttributeValueRegistry) (saml.Attribute, error) {
	if err := checkTag(el, attributeName); err != nil {
		return saml.Attribute{}, err
	}

	attribute := saml.Attribute{
		Name:         el.SelectAttrValue("Name", ""),
		FriendlyName: el.SelectAttrValue("FriendlyName", ""),
		NameFormat:   el.SelectAttrValue("NameFormat", ""),
	}

	for _, child := range el.ChildElements() {
		if child.Tag != attributeValueName.Local {
			return saml.Attribute{}, NewStructuralError(el.Tag,
				"expecting '"+attributeValueName.Local+
					"' child element; found '"+child.Tag+"'")
		}

		typeID, err := wireTypeID(child)
		if err != nil {
			return saml.Attribute{}, err
		}

		codec, err := registry.ForTypeID(typeID)
		if err != nil {
			return saml.Attribute{}, err
		}

		value, err := codec.Parse(child)
		if err != nil {
			return saml.Attribute{}, err
		}
		attribute.Values = append(attribute.Values, value)
	}

	return attribute, nil
}

// CreateAttributeStatement makes a saml:AttributeStatement element,
// preserving attribute order
func CreateAttributeStatement(statement saml.AttributeStatement, registry *AttributeValueRegistry) (*etree.Element, error) {
	el := newElement(attributeStatementName)

	for _, attribute := range statement.Attributes {
		attributeElem, err := CreateAttribute(attribute, registry)
		if err != nil {
			return nil, err
		}
		el.AddChild(attributeElem)
	}

	return el, nil
}

// ParseAttributeStatement reads a saml:AttributeStatement element
func ParseAttributeStatement(el *etree.Element, registry *AttributeValueRegistry) (saml.AttributeStatement, error) {
	if err := checkTag(el, attributeStatementName); err != nil {
		return saml.AttributeStatement{}, err
	}

	statement := saml.AttributeStatement{}
	for _, child := range el.ChildElements() {
		attribute, err := ParseAttribute(child, registry)
		if err != nil {
			return saml.AttributeStatement{}, err
		}
		statement.Attributes = append(statement.Attributes, attribute)
	}

	return statement, nil
}

// CreateAuthzDecisionStatement makes a saml:AuthzDecisionStatement element
func CreateAuthzDecisionStatement(statement saml.AuthzDecisionStatement) (*etree.Element, error) {
	if !statement.Decision.Valid() {
		return nil, NewTypeMismatchError("Decision",
			string(statement.Decision))
	}

	el := newElement(authzStatementName)
	el.CreateAttr("Resource", statement.Resource)
	el.CreateAttr("Decision", string(statement.Decision))

	for _, action := range statement.Actions {
		actionElem, err := CreateAction(action)
		if err != nil {
			return nil, err
		}
		el.AddChild(actionElem)
	}

	return el, nil
}

// ParseAuthzDecisionStatement reads a saml:AuthzDecisionStatement element.
// Resource and Decision attributes are required and the decision must be one
// of the three defined values.
func ParseAuthzDecisionStatement(el *etree.Element) (saml.AuthzDecisionStatement, error) {
	if err := checkTag(el, authzStatementName); err != nil {
		return saml.AuthzDecisionStatement{}, err
	}

	resource, err := requiredAttr(el, "Resource")
	if err != nil {
		return saml.AuthzDecisionStatement{}, err
	}

	decisionStr, err := requiredAttr(el, "Decision")
	if err != nil {
		return saml.AuthzDecisionStatement{}, err
	}
	decision, err := saml.ParseDecision(decisionStr)
	if err != nil {
		return saml.AuthzDecisionStatement{}, NewStructuralError(el.Tag, err.Error())
	}

	statement := saml.AuthzDecisionStatement{
		Resource: resource,
		Decision: decision,
	}

	for _, child := range el.ChildElements() {
		if child.Tag != actionName.Local {
			return saml.AuthzDecisionStatement{}, NewStructuralError(el.Tag,
				"expecting '"+actionName.Local+
					"' child element; found '"+child.Tag+"'")
		}

		action, err := ParseAction(child)
		if err != nil {
			return saml.AuthzDecisionStatement{}, err
		}
		statement.Actions = append(statement.Actions, action)
	}

	return statement, nil
}

// CreateAssertion makes a saml:Assertion element. Optional children are
// omitted when absent; statements are emitted in schema order. Advice and
// authentication statements have no serialization yet and fail loudly
// rather than being dropped.
func CreateAssertion(assertion saml.Assertion, registry *AttributeValueRegistry) (*etree.Element, error) {
	el := newElement(assertionName)
	el.CreateAttr("ID", assertion.ID)
	el.CreateAttr("IssueInstant", formatInstant(assertion.IssueInstant))
	el.CreateAttr("Version", assertion.Version.String())

	if assertion.Issuer != nil {
		issuerElem, err := CreateIssuer(*assertion.Issuer)
		if err != nil {
			return nil, err
		}
		el.AddChild(issuerElem)
	}

	if assertion.Subject != nil {
		subjectElem, err := CreateSubject(*assertion.Subject)
		if err != nil {
			return nil, err
		}
		el.AddChild(subjectElem)
	}

	if assertion.Conditions != nil {
		conditionsElem, err := CreateConditions(*assertion.Conditions)
		if err != nil {
			return nil, err
		}
		el.AddChild(conditionsElem)
	}

	if len(assertion.Advice) > 0 {
		return nil, errors.Wrap(ErrNotImplemented,
			"Assertion Advice serialization")
	}

	if len(assertion.AuthnStatements) > 0 {
		return nil, errors.Wrap(ErrNotImplemented,
			"Assertion authentication statement serialization")
	}

	for _, statement := range assertion.AuthzDecisionStatements {
		statementElem, err := CreateAuthzDecisionStatement(statement)
		if err != nil {
			return nil, err
		}
		el.AddChild(statementElem)
	}

	for _, statement := range assertion.AttributeStatements {
		statementElem, err := CreateAttributeStatement(statement, registry)
		if err != nil {
			return nil, err
		}
		el.AddChild(statementElem)
	}

	return el, nil
}

// ParseAssertion reads a saml:Assertion element, walking children in
// document order and rejecting unrecognised kinds
func ParseAssertion(el *etree.Element, registry *AttributeValueRegistry) (saml.Assertion, error) {
	if err := checkTag(el, assertionName); err != nil {
		return saml.Assertion{}, err
	}

	version, err := parseVersion(el)
	if err != nil {
		return saml.Assertion{}, err
	}

	instantStr, err := requiredAttr(el, "IssueInstant")
	if err != nil {
		return saml.Assertion{}, err
	}
	issueInstant, err := parseInstant(el.Tag, instantStr)
	if err != nil {
		return saml.Assertion{}, err
	}

	id, err := requiredAttr(el, "ID")
	if err != nil {
		return saml.Assertion{}, err
	}

	assertion := saml.Assertion{
		ID:           id,
		IssueInstant: issueInstant,
		Version:      version,
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case issuerName.Local:
			issuer, err := ParseIssuer(child)
			if err != nil {
				return saml.Assertion{}, err
			}
			assertion.Issuer = &issuer

		case subjectName.Local:
			subject, err := ParseSubject(child)
			if err != nil {
				return saml.Assertion{}, err
			}
			assertion.Subject = &subject

		case conditionsName.Local:
			conditions, err := ParseConditions(child)
			if err != nil {
				return saml.Assertion{}, err
			}
			assertion.Conditions = &conditions

		case authzStatementName.Local:
			statement, err := ParseAuthzDecisionStatement(child)
			if err != nil {
				return saml.Assertion{}, err
			}
			assertion.AuthzDecisionStatements = append(
				assertion.AuthzDecisionStatements, statement)

		case attributeStatementName.Local:
			statement, err := ParseAttributeStatement(child, registry)
			if err != nil {
				return saml.Assertion{}, err
			}
			assertion.AttributeStatements = append(
				assertion.AttributeStatements, statement)

		case authnStatementName.Local:
			return saml.Assertion{}, errors.Wrap(ErrNotImplemented,
				"Assertion authentication statement parsing")

		default:
			return saml.Assertion{}, NewStructuralError(el.Tag,
				"unrecognised child element '"+child.Tag+"'")
		}
	}

	return assertion, nil
}
