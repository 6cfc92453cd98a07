package saml

// OASIS SAML 2.0 namespace URIs.
// These are fixed by the SAML 2.0 specification and must match exactly
// for interoperability with other implementations.
const (
	AssertionNamespace = "urn:oasis:names:tc:SAML:2.0:assertion"
	ProtocolNamespace  = "urn:oasis:names:tc:SAML:2.0:protocol"

	AssertionPrefix = "saml"
	ProtocolPrefix  = "samlp"
)

// XML Schema namespaces used for typed attribute values
const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema"
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

	XSDPrefix = "xs"
	XSIPrefix = "xsi"
)

// Top-level status code URIs defined by SAML 2.0 core section 3.2.2.2
const (
	StatusSuccess         = "urn:oasis:names:tc:SAML:2.0:status:Success"
	StatusRequester       = "urn:oasis:names:tc:SAML:2.0:status:Requester"
	StatusResponder       = "urn:oasis:names:tc:SAML:2.0:status:Responder"
	StatusVersionMismatch = "urn:oasis:names:tc:SAML:2.0:status:VersionMismatch"
)

// Name identifier format URIs
const (
	NameIDFormatUnspecified = "urn:oasis:names:tc:SAML:1.1:nameid-format:unspecified"
	NameIDFormatX509Subject = "urn:oasis:names:tc:SAML:1.1:nameid-format:X509SubjectName"
)

// Action namespace URIs and values from SAML 2.0 core section 8.1.
// The "ghpp" namespace covers the HTTP GET/HEAD/PUT/POST verb set.
const (
	ActionGHPPNamespace = "urn:oasis:names:tc:SAML:1.0:action:ghpp"

	ActionHTTPGet  = "GET"
	ActionHTTPHead = "HEAD"
	ActionHTTPPut  = "PUT"
	ActionHTTPPost = "POST"
)
