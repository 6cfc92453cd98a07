// Package soap frames SAML protocol elements in SOAP 1.1 envelopes for the
// HTTP binding. Only the envelope/body subset the SAML SOAP binding needs is
// implemented.
package soap

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/datagrid-security/saml-authz-api/saml/xmlbind"
)

// SOAP 1.1 envelope namespace
const (
	EnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	EnvelopePrefix    = "SOAP-ENV"
)

// ContentType is the media type of SOAP 1.1 messages over HTTP
const ContentType = "text/xml; charset=utf-8"

func init() {
	xmlbind.RegisterNamespace(EnvelopeNamespace, EnvelopePrefix)
}

// Envelope is a SOAP 1.1 envelope with a header and a body
type Envelope struct {
	root *etree.Element
	body *etree.Element
}

// NewEnvelope creates an empty envelope with header and body elements
func NewEnvelope() *Envelope {
	root := etree.NewElement(EnvelopePrefix + ":Envelope")
	root.AddChild(etree.NewElement(EnvelopePrefix + ":Header"))
	body := etree.NewElement(EnvelopePrefix + ":Body")
	root.AddChild(body)

	return &Envelope{
		root: root,
		body: body,
	}
}

// AttachPayload places a payload element inside the envelope body
func (e *Envelope) AttachPayload(el *etree.Element) {
	e.body.AddChild(el)
}

// Payload returns the single element carried in the envelope body
func (e *Envelope) Payload() (*etree.Element, error) {
	children := e.body.ChildElements()
	if len(children) != 1 {
		return nil, xmlbind.NewStructuralError("Body",
			"expecting a single payload element; found "+
				strconv.Itoa(len(children)))
	}
	return children[0], nil
}

// Serialize writes the envelope as a self-contained XML document
func (e *Envelope) Serialize() ([]byte, error) {
	return xmlbind.Marshal(e.root)
}

// ParseEnvelope reads a serialized SOAP envelope, locating its body.
// A missing Envelope or Body element is a structural error.
func ParseEnvelope(data []byte) (*Envelope, error) {
	root, err := xmlbind.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	if root.Tag != "Envelope" {
		return nil, xmlbind.NewUnexpectedElementError("Envelope", root.Tag)
	}

	var body *etree.Element
	for _, child := range root.ChildElements() {
		if child.Tag == "Body" {
			body = child
			break
		}
	}
	if body == nil {
		return nil, xmlbind.NewStructuralError("Envelope",
			"no Body element found")
	}

	return &Envelope{
		root: root,
		body: body,
	}, nil
}
