package soap

import "github.com/beevik/etree"

// FaultCode distinguishes sender faults from service faults
type FaultCode string

// SOAP 1.1 fault codes
const (
	FaultClient FaultCode = EnvelopePrefix + ":Client"
	FaultServer FaultCode = EnvelopePrefix + ":Server"
)

// NewFault creates an envelope carrying a SOAP 1.1 fault.
// Per SOAP 1.1 section 4.4, faultcode and faultstring are unqualified.
func NewFault(code FaultCode, message string) *Envelope {
	fault := etree.NewElement(EnvelopePrefix + ":Fault")

	faultCode := etree.NewElement("faultcode")
	faultCode.SetText(string(code))
	fault.AddChild(faultCode)

	faultString := etree.NewElement("faultstring")
	faultString.SetText(message)
	fault.AddChild(faultString)

	envelope := NewEnvelope()
	envelope.AttachPayload(fault)
	return envelope
}

// ParseFault extracts the fault code and string from an envelope body, if
// the payload is a fault. The boolean reports whether a fault was present.
func ParseFault(e *Envelope) (FaultCode, string, bool) {
	payload, err := e.Payload()
	if err != nil || payload.Tag != "Fault" {
		return "", "", false
	}

	var code, message string
	for _, child := range payload.ChildElements() {
		switch child.Tag {
		case "faultcode":
			code = child.Text()
		case "faultstring":
			message = child.Text()
		}
	}

	return FaultCode(code), message, true
}
