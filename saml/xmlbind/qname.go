package xmlbind

import (
	"strings"
	"sync"

	"github.com/beevik/etree"

	"github.com/datagrid-security/saml-authz-api/saml"
)

// QName is a namespace-qualified XML name with its serialization prefix
type QName struct {
	NamespaceURI string
	Local        string
	Prefix       string
}

// ParseTag splits a combined tag of the form "{namespace-uri}local" into its
// namespace URI and local part. A tag without a bracketed namespace yields an
// empty namespace URI.
func ParseTag(tag string) QName {
	if strings.HasPrefix(tag, "{") {
		if end := strings.LastIndex(tag, "}"); end > 0 {
			return QName{
				NamespaceURI: tag[1:end],
				Local:        tag[end+1:],
			}
		}
	}
	return QName{Local: tag}
}

// Tag returns the combined "{namespace-uri}local" form
func (q QName) Tag() string {
	if q.NamespaceURI == "" {
		return q.Local
	}
	return "{" + q.NamespaceURI + "}" + q.Local
}

// String returns the prefixed form used for element creation
func (q QName) String() string {
	if q.Prefix == "" {
		return q.Local
	}
	return q.Prefix + ":" + q.Local
}

// Process-wide namespace prefix table used during serialization.
// It is populated with the fixed OASIS set at init time and is read-mostly
// afterwards; registration of custom namespaces is synchronized so that
// deployments serializing concurrently stay correct.
var (
	namespaceMu sync.RWMutex
	uriByPrefix = map[string]string{}
	prefixByURI = map[string]string{}
)

// RegisterNamespace maps a namespace URI to the prefix used when declaring
// it during serialization. Registration must happen before the namespace is
// first serialized, not lazily per call.
func RegisterNamespace(uri string, prefix string) {
	namespaceMu.Lock()
	defer namespaceMu.Unlock()
	uriByPrefix[prefix] = uri
	prefixByURI[uri] = prefix
}

// NamespaceForPrefix resolves a registered prefix to its namespace URI
func NamespaceForPrefix(prefix string) (string, bool) {
	namespaceMu.RLock()
	defer namespaceMu.RUnlock()
	uri, ok := uriByPrefix[prefix]
	return uri, ok
}

// PrefixForNamespace resolves a registered namespace URI to its prefix
func PrefixForNamespace(uri string) (string, bool) {
	namespaceMu.RLock()
	defer namespaceMu.RUnlock()
	prefix, ok := prefixByURI[uri]
	return prefix, ok
}

func init() {
	RegisterNamespace(saml.AssertionNamespace, saml.AssertionPrefix)
	RegisterNamespace(saml.ProtocolNamespace, saml.ProtocolPrefix)
	RegisterNamespace(saml.XSDNamespace, saml.XSDPrefix)
	RegisterNamespace(saml.XSINamespace, saml.XSIPrefix)
	RegisterNamespace(saml.GroupRoleNamespace, saml.GroupRolePrefix)
}

// DeclareNamespaces adds an xmlns declaration on el for every namespace
// prefix referenced anywhere in its subtree, making the element
// self-contained for serialization. A prefix with no registered namespace is
// a NamespaceError.
func DeclareNamespaces(el *etree.Element) error {
	prefixes := map[string]struct{}{}
	collectPrefixes(el, prefixes)

	for prefix := range prefixes {
		uri, ok := NamespaceForPrefix(prefix)
		if !ok {
			return NewNamespaceError(prefix)
		}
		if el.SelectAttr("xmlns:"+prefix) == nil {
			el.CreateAttr("xmlns:"+prefix, uri)
		}
	}

	return nil
}

func collectPrefixes(el *etree.Element, prefixes map[string]struct{}) {
	if el.Space != "" {
		prefixes[el.Space] = struct{}{}
	}

	for _, attr := range el.Attr {
		// xmlns declarations themselves and the reserved xml prefix
		// never need a declaration of their own
		if attr.Space == "" || attr.Space == "xmlns" || attr.Space == "xml" {
			continue
		}
		prefixes[attr.Space] = struct{}{}
	}

	for _, child := range el.ChildElements() {
		collectPrefixes(child, prefixes)
	}
}

// Marshal serializes a created element to a self-contained XML document,
// declaring every referenced namespace on the root
func Marshal(el *etree.Element) ([]byte, error) {
	if err := DeclareNamespaces(el); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	return doc.WriteToBytes()
}

// Unmarshal parses an XML document into its root element
func Unmarshal(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, NewStructuralError("document", err.Error())
	}

	root := doc.Root()
	if root == nil {
		return nil, NewStructuralError("document", "no root element")
	}

	return root, nil
}

func newElement(q QName) *etree.Element {
	return etree.NewElement(q.String())
}

func checkTag(el *etree.Element, q QName) error {
	if el.Tag != q.Local {
		return NewUnexpectedElementError(q.Local, el.Tag)
	}
	return nil
}

func requiredAttr(el *etree.Element, name string) (string, error) {
	attr := el.SelectAttr(name)
	if attr == nil {
		return "", NewMissingAttributeError(el.Tag, name)
	}
	return attr.Value, nil
}
