package xmlbind

import (
	"github.com/beevik/etree"

	"github.com/datagrid-security/saml-authz-api/saml"
)

// CreateAttributeQuery makes a samlp:AttributeQuery element
func CreateAttributeQuery(query saml.AttributeQuery, registry *AttributeValueRegistry) (*etree.Element, error) {
	el := newElement(attributeQueryName)
	el.CreateAttr("ID", query.ID)
	el.CreateAttr("IssueInstant", formatInstant(query.IssueInstant))
	el.CreateAttr("Version", query.Version.String())

	issuerElem, err := CreateIssuer(query.Issuer)
	if err != nil {
		return nil, err
	}
	el.AddChild(issuerElem)

	subjectElem, err := CreateSubject(query.Subject)
	if err != nil {
		return nil, err
	}
	el.AddChild(subjectElem)

	for _, attribute := range query.Attributes {
		attributeElem, err := CreateAttribute(attribute, registry)
		if err != nil {
			return nil, err
		}
		el.AddChild(attributeElem)
	}

	return el, nil
}

// ParseAttributeQuery reads a samlp:AttributeQuery element
func ParseAttributeQuery(el *etree.Element, registry *AttributeValueRegistry) (saml.AttributeQuery, error) {
	if err := checkTag(el, attributeQueryName); err != nil {
		return saml.AttributeQuery{}, err
	}

	version, err := parseVersion(el)
	if err != nil {
		return saml.AttributeQuery{}, err
	}

	instantStr, err := requiredAttr(el, "IssueInstant")
	if err != nil {
		return saml.AttributeQuery{}, err
	}
	issueInstant, err := parseInstant(el.Tag, instantStr)
	if err != nil {
		return saml.AttributeQuery{}, err
	}

	id, err := requiredAttr(el, "ID")
	if err != nil {
		return saml.AttributeQuery{}, err
	}

	query := saml.AttributeQuery{
		ID:           id,
		IssueInstant: issueInstant,
		Version:      version,
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case issuerName.Local:
			query.Issuer, err = ParseIssuer(child)
			if err != nil {
				return saml.AttributeQuery{}, err
			}

		case subjectName.Local:
			query.Subject, err = ParseSubject(child)
			if err != nil {
				return saml.AttributeQuery{}, err
			}

		case attributeName.Local:
			attribute, err := ParseAttribute(child, registry)
			if err != nil {
				return saml.AttributeQuery{}, err
			}
			query.Attributes = append(query.Attributes, attribute)

		default:
			return saml.AttributeQuery{}, NewStructuralError(el.Tag,
				"unrecognised child element '"+child.Tag+"'")
		}
	}

	return query, nil
}

// CreateAuthzDecisionQuery makes a samlp:AuthzDecisionQuery element
func CreateAuthzDecisionQuery(query saml.AuthzDecisionQuery) (*etree.Element, error) {
	el := newElement(authzQueryName)
	el.CreateAttr("ID", query.ID)
	el.CreateAttr("IssueInstant", formatInstant(query.IssueInstant))
	el.CreateAttr("Version", query.Version.String())
	el.CreateAttr("Resource", query.Resource)

	issuerElem, err := CreateIssuer(query.Issuer)
	if err != nil {
		return nil, err
	}
	el.AddChild(issuerElem)

	subjectElem, err := CreateSubject(query.Subject)
	if err != nil {
		return nil, err
	}
	el.AddChild(subjectElem)

	for _, action := range query.Actions {
		actionElem, err := CreateAction(action)
		if err != nil {
			return nil, err
		}
		el.AddChild(actionElem)
	}

	return el, nil
}

// ParseAuthzDecisionQuery reads a samlp:AuthzDecisionQuery element.
// The Resource attribute is required alongside the shared protocol
// attributes.
func ParseAuthzDecisionQuery(el *etree.Element) (saml.AuthzDecisionQuery, error) {
	if err := checkTag(el, authzQueryName); err != nil {
		return saml.AuthzDecisionQuery{}, err
	}

	version, err := parseVersion(el)
	if err != nil {
		return saml.AuthzDecisionQuery{}, err
	}

	instantStr, err := requiredAttr(el, "IssueInstant")
	if err != nil {
		return saml.AuthzDecisionQuery{}, err
	}
	issueInstant, err := parseInstant(el.Tag, instantStr)
	if err != nil {
		return saml.AuthzDecisionQuery{}, err
	}

	id, err := requiredAttr(el, "ID")
	if err != nil {
		return saml.AuthzDecisionQuery{}, err
	}

	resource, err := requiredAttr(el, "Resource")
	if err != nil {
		return saml.AuthzDecisionQuery{}, err
	}

	query := saml.AuthzDecisionQuery{
		ID:           id,
		IssueInstant: issueInstant,
		Version:      version,
		Resource:     resource,
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case issuerName.Local:
			query.Issuer, err = ParseIssuer(child)
			if err != nil {
				return saml.AuthzDecisionQuery{}, err
			}

		case subjectName.Local:
			query.Subject, err = ParseSubject(child)
			if err != nil {
				return saml.AuthzDecisionQuery{}, err
			}

		case actionName.Local:
			action, err := ParseAction(child)
			if err != nil {
				return saml.AuthzDecisionQuery{}, err
			}
			query.Actions = append(query.Actions, action)

		default:
			return saml.AuthzDecisionQuery{}, NewStructuralError(el.Tag,
				"unrecognised child element '"+child.Tag+"'")
		}
	}

	return query, nil
}

// CreateResponse makes a samlp:Response element
func CreateResponse(response saml.Response, registry *AttributeValueRegistry) (*etree.Element, error) {
	el := newElement(responseName)
	el.CreateAttr("ID", response.ID)
	el.CreateAttr("IssueInstant", formatInstant(response.IssueInstant))
	el.CreateAttr("InResponseTo", response.InResponseTo)
	el.CreateAttr("Version", response.Version.String())

	if response.Issuer != nil {
		issuerElem, err := CreateIssuer(*response.Issuer)
		if err != nil {
			return nil, err
		}
		el.AddChild(issuerElem)
	}

	statusElem, err := CreateStatus(response.Status)
	if err != nil {
		return nil, err
	}
	el.AddChild(statusElem)

	if response.Subject != nil {
		subjectElem, err := CreateSubject(*response.Subject)
		if err != nil {
			return nil, err
		}
		el.AddChild(subjectElem)
	}

	for _, assertion := range response.Assertions {
		assertionElem, err := CreateAssertion(assertion, registry)
		if err != nil {
			return nil, err
		}
		el.AddChild(assertionElem)
	}

	return el, nil
}

// ParseResponse reads a samlp:Response element. ID, IssueInstant,
// InResponseTo and Version are all required, and only version 2.0 passes.
func ParseResponse(el *etree.Element, registry *AttributeValueRegistry) (saml.Response, error) {
	if err := checkTag(el, responseName); err != nil {
		return saml.Response{}, err
	}

	version, err := parseVersion(el)
	if err != nil {
		return saml.Response{}, err
	}

	instantStr, err := requiredAttr(el, "IssueInstant")
	if err != nil {
		return saml.Response{}, err
	}
	issueInstant, err := parseInstant(el.Tag, instantStr)
	if err != nil {
		return saml.Response{}, err
	}

	id, err := requiredAttr(el, "ID")
	if err != nil {
		return saml.Response{}, err
	}

	inResponseTo, err := requiredAttr(el, "InResponseTo")
	if err != nil {
		return saml.Response{}, err
	}

	response := saml.Response{
		ID:           id,
		InResponseTo: inResponseTo,
		IssueInstant: issueInstant,
		Version:      version,
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case issuerName.Local:
			issuer, err := ParseIssuer(child)
			if err != nil {
				return saml.Response{}, err
			}
			response.Issuer = &issuer

		case statusName.Local:
			response.Status, err = ParseStatus(child)
			if err != nil {
				return saml.Response{}, err
			}

		case subjectName.Local:
			subject, err := ParseSubject(child)
			if err != nil {
				return saml.Response{}, err
			}
			response.Subject = &subject

		case assertionName.Local:
			assertion, err := ParseAssertion(child, registry)
			if err != nil {
				return saml.Response{}, err
			}
			response.Assertions = append(response.Assertions, assertion)

		default:
			return saml.Response{}, NewStructuralError(el.Tag,
				"unrecognised child element '"+child.Tag+"'")
		}
	}

	return response, nil
}
