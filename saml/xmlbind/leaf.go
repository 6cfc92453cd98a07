package xmlbind

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"

	"github.com/datagrid-security/saml-authz-api/saml"
)

// CreateIssuer makes a saml:Issuer element
func CreateIssuer(issuer saml.Issuer) (*etree.Element, error) {
	el := newElement(issuerName)
	el.CreateAttr("Format", issuer.Format)
	el.SetText(issuer.Value)
	return el, nil
}

// ParseIssuer reads a saml:Issuer element. The Format attribute is required.
func ParseIssuer(el *etree.Element) (saml.Issuer, error) {
	if err := checkTag(el, issuerName); err != nil {
		return saml.Issuer{}, err
	}

	format, err := requiredAttr(el, "Format")
	if err != nil {
		return saml.Issuer{}, err
	}

	return saml.Issuer{
		Format: format,
		Value:  strings.TrimSpace(el.Text()),
	}, nil
}

// CreateNameID makes a saml:NameID element
func CreateNameID(nameID saml.NameID) (*etree.Element, error) {
	el := newElement(nameIDName)
	el.CreateAttr("Format", nameID.Format)
	el.SetText(nameID.Value)
	return el, nil
}

// ParseNameID reads a saml:NameID element. The Format attribute is required.
func ParseNameID(el *etree.Element) (saml.NameID, error) {
	if err := checkTag(el, nameIDName); err != nil {
		return saml.NameID{}, err
	}

	format, err := requiredAttr(el, "Format")
	if err != nil {
		return saml.NameID{}, err
	}

	return saml.NameID{
		Format: format,
		Value:  strings.TrimSpace(el.Text()),
	}, nil
}

// CreateSubject makes a saml:Subject element with its single NameID child
func CreateSubject(subject saml.Subject) (*etree.Element, error) {
	el := newElement(subjectName)

	nameIDElem, err := CreateNameID(subject.NameID)
	if err != nil {
		return nil, err
	}
	el.AddChild(nameIDElem)

	return el, nil
}

// ParseSubject reads a saml:Subject element, requiring exactly one NameID
// child
func ParseSubject(el *etree.Element) (saml.Subject, error) {
	if err := checkTag(el, subjectName); err != nil {
		return saml.Subject{}, err
	}

	children := el.ChildElements()
	if len(children) != 1 {
		return saml.Subject{}, NewStructuralError(el.Tag,
			"expecting a single NameID child element; found "+
				strconv.Itoa(len(children)))
	}

	nameID, err := ParseNameID(children[0])
	if err != nil {
		return saml.Subject{}, err
	}

	return saml.Subject{NameID: nameID}, nil
}

// CreateStatusCode makes a samlp:StatusCode element
func CreateStatusCode(statusCode saml.StatusCode) (*etree.Element, error) {
	el := newElement(statusCodeName)
	el.SetText(statusCode.Value)
	return el, nil
}

// ParseStatusCode reads a samlp:StatusCode element
func ParseStatusCode(el *etree.Element) (saml.StatusCode, error) {
	if err := checkTag(el, statusCodeName); err != nil {
		return saml.StatusCode{}, err
	}

	return saml.StatusCode{Value: strings.TrimSpace(el.Text())}, nil
}

// CreateStatus makes a samlp:Status element with its single StatusCode child
func CreateStatus(status saml.Status) (*etree.Element, error) {
	el := newElement(statusName)

	statusCodeElem, err := CreateStatusCode(status.StatusCode)
	if err != nil {
		return nil, err
	}
	el.AddChild(statusCodeElem)

	return el, nil
}

// ParseStatus reads a samlp:Status element, requiring exactly one StatusCode
// child
func ParseStatus(el *etree.Element) (saml.Status, error) {
	if err := checkTag(el, statusName); err != nil {
		return saml.Status{}, err
	}

	children := el.ChildElements()
	if len(children) != 1 {
		return saml.Status{}, NewStructuralError(el.Tag,
			"expecting a single StatusCode child element; found "+
				strconv.Itoa(len(children)))
	}

	statusCode, err := ParseStatusCode(children[0])
	if err != nil {
		return saml.Status{}, err
	}

	return saml.Status{StatusCode: statusCode}, nil
}

// CreateConditions makes a saml:Conditions element carrying the validity
// window. Extension conditions have no serialization yet and fail loudly.
func CreateConditions(conditions saml.Conditions) (*etree.Element, error) {
	if len(conditions.Conditions) > 0 {
		return nil, errors.Wrap(ErrNotImplemented,
			"Conditions extension list serialization")
	}

	el := newElement(conditionsName)
	el.CreateAttr("NotBefore", formatInstant(conditions.NotBefore))
	el.CreateAttr("NotOnOrAfter", formatInstant(conditions.NotOnOrAfter))
	return el, nil
}

// ParseConditions reads a saml:Conditions element. Both window attributes
// are required and child conditions are rejected.
func ParseConditions(el *etree.Element) (saml.Conditions, error) {
	if err := checkTag(el, conditionsName); err != nil {
		return saml.Conditions{}, err
	}

	notBeforeStr, err := requiredAttr(el, "NotBefore")
	if err != nil {
		return saml.Conditions{}, err
	}
	notBefore, err := parseInstant(el.Tag, notBeforeStr)
	if err != nil {
		return saml.Conditions{}, err
	}

	notOnOrAfterStr, err := requiredAttr(el, "NotOnOrAfter")
	if err != nil {
		return saml.Conditions{}, err
	}
	notOnOrAfter, err := parseInstant(el.Tag, notOnOrAfterStr)
	if err != nil {
		return saml.Conditions{}, err
	}

	if children := el.ChildElements(); len(children) > 0 {
		return saml.Conditions{}, errors.Wrap(ErrNotImplemented,
			"Conditions extension list parsing")
	}

	return saml.Conditions{
		NotBefore:    notBefore,
		NotOnOrAfter: notOnOrAfter,
	}, nil
}

// CreateAction makes a saml:Action element
func CreateAction(action saml.Action) (*etree.Element, error) {
	el := newElement(actionName)
	el.CreateAttr("Namespace", action.Namespace)
	el.SetText(action.Value)
	return el, nil
}

// ParseAction reads a saml:Action element. The Namespace attribute is
// required.
func ParseAction(el *etree.Element) (saml.Action, error) {
	if err := checkTag(el, actionName); err != nil {
		return saml.Action{}, err
	}

	namespace, err := requiredAttr(el, "Namespace")
	if err != nil {
		return saml.Action{}, err
	}

	return saml.Action{
		Namespace: namespace,
		Value:     strings.TrimSpace(el.Text()),
	}, nil
}
