package xmlbind

import (
	"fmt"
	"strings"
	"sync"

	"github.com/beevik/etree"

	"github.com/datagrid-security/saml-authz-api/saml"
)

// AttributeValueCodec binds one attribute value variant to its XML form.
// Create rejects values of the wrong variant with a TypeMismatchError;
// Parse validates the element's xsi:type against the variant it handles.
type AttributeValueCodec interface {
	Create(value saml.AttributeValue) (*etree.Element, error)
	Parse(el *etree.Element) (saml.AttributeValue, error)
}

// AttributeValueRegistry dispatches attribute value variants to their
// codecs. Because each variant carries its wire type identifier as an
// explicit discriminant, a single table serves both directions: create
// resolves through the value's TypeID and parse through the xsi:type
// attribute extracted from the wire.
//
// New attribute value shapes can be added without modifying the core
// binding code by registering a codec under a fresh type identifier.
type AttributeValueRegistry struct {
	mu     sync.RWMutex
	codecs map[string]AttributeValueCodec
}

// NewAttributeValueRegistry creates an empty registry
func NewAttributeValueRegistry() *AttributeValueRegistry {
	return &AttributeValueRegistry{
		codecs: map[string]AttributeValueCodec{},
	}
}

var defaultRegistry = func() *AttributeValueRegistry {
	registry := NewAttributeValueRegistry()
	registry.Register(saml.XSStringTypeID, XSStringCodec{})
	registry.Register(saml.GroupRoleTypeID, GroupRoleCodec{})
	return registry
}()

// DefaultRegistry returns the process-wide registry pre-populated with the
// xs:string and ESG group/role codecs
func DefaultRegistry() *AttributeValueRegistry {
	return defaultRegistry
}

// Register maps a wire type identifier to its codec
func (r *AttributeValueRegistry) Register(typeID string, codec AttributeValueCodec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[typeID] = codec
}

// Deregister removes the codec for a wire type identifier
func (r *AttributeValueRegistry) Deregister(typeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codecs, typeID)
}

// ForValue resolves the codec for an attribute value variant.
// There is no default fallback; an unregistered variant is an error.
func (r *AttributeValueRegistry) ForValue(value saml.AttributeValue) (AttributeValueCodec, error) {
	return r.ForTypeID(value.TypeID())
}

// ForTypeID resolves the codec for a wire xsi:type identifier.
// There is no default fallback; an unregistered identifier is an error.
func (r *AttributeValueRegistry) ForTypeID(typeID string) (AttributeValueCodec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codec, ok := r.codecs[typeID]
	if !ok {
		return nil, NewUnregisteredCodecError(typeID)
	}
	return codec, nil
}

// newAttributeValueElement makes the shared AttributeValue element shell
func newAttributeValueElement() *etree.Element {
	return newElement(attributeValueName)
}

// wireTypeID extracts the xsi:type identifier from an AttributeValue
// element. The attribute is matched on its local name, whatever prefix the
// sender declared for the XML schema instance namespace.
func wireTypeID(el *etree.Element) (string, error) {
	for _, attr := range el.Attr {
		if attr.Key == "type" && attr.Space != "" && attr.Space != "xmlns" {
			return attr.Value, nil
		}
	}
	return "", NewStructuralError(el.Tag,
		"unable to determine a type for the attribute value")
}

// typeLocalName strips the namespace prefix from a wire type identifier
func typeLocalName(typeID string) string {
	parts := strings.Split(typeID, ":")
	return parts[len(parts)-1]
}

// XSStringCodec binds the xs:string attribute value variant
type XSStringCodec struct{}

// Create implements AttributeValueCodec
func (XSStringCodec) Create(value saml.AttributeValue) (*etree.Element, error) {
	str, ok := value.(saml.XSString)
	if !ok {
		return nil, NewTypeMismatchError(saml.XSStringTypeID, value.TypeID())
	}

	el := newAttributeValueElement()

	// The xs and xsi prefixes appear inside the xsi:type attribute value,
	// where the namespace declaration pass cannot see them, so they are
	// declared on the element itself
	el.CreateAttr("xmlns:"+saml.XSDPrefix, saml.XSDNamespace)
	el.CreateAttr("xmlns:"+saml.XSIPrefix, saml.XSINamespace)
	el.CreateAttr(saml.XSIPrefix+":type", saml.XSStringTypeID)
	el.SetText(str.Value)

	return el, nil
}

// Parse implements AttributeValueCodec
func (XSStringCodec) Parse(el *etree.Element) (saml.AttributeValue, error) {
	if err := checkTag(el, attributeValueName); err != nil {
		return nil, err
	}

	typeID, err := wireTypeID(el)
	if err != nil {
		return nil, err
	}
	if typeLocalName(typeID) != typeLocalName(saml.XSStringTypeID) {
		return nil, NewStructuralError(el.Tag,
			fmt.Sprintf("expecting '%s' type; got '%s'",
				saml.XSStringTypeID, typeID))
	}

	return saml.XSString{Value: strings.TrimSpace(el.Text())}, nil
}

// GroupRoleCodec binds the ESG group/role attribute value variant
type GroupRoleCodec struct{}

// Create implements AttributeValueCodec
func (GroupRoleCodec) Create(value saml.AttributeValue) (*etree.Element, error) {
	groupRole, ok := value.(saml.GroupRole)
	if !ok {
		return nil, NewTypeMismatchError(saml.GroupRoleTypeID, value.TypeID())
	}

	el := newAttributeValueElement()
	el.CreateAttr("xmlns:"+saml.GroupRolePrefix, saml.GroupRoleNamespace)
	el.CreateAttr("xmlns:"+saml.XSIPrefix, saml.XSINamespace)
	el.CreateAttr(saml.XSIPrefix+":type", saml.GroupRoleTypeID)
	el.CreateAttr("group", groupRole.Group)
	el.CreateAttr("role", groupRole.Role)

	return el, nil
}

// Parse implements AttributeValueCodec
func (GroupRoleCodec) Parse(el *etree.Element) (saml.AttributeValue, error) {
	if err := checkTag(el, attributeValueName); err != nil {
		return nil, err
	}

	typeID, err := wireTypeID(el)
	if err != nil {
		return nil, err
	}
	if typeLocalName(typeID) != typeLocalName(saml.GroupRoleTypeID) {
		return nil, NewStructuralError(el.Tag,
			fmt.Sprintf("expecting '%s' type; got '%s'",
				saml.GroupRoleTypeID, typeID))
	}

	group, err := requiredAttr(el, "group")
	if err != nil {
		return nil, err
	}
	role, err := requiredAttr(el, "role")
	if err != nil {
		return nil, err
	}

	return saml.GroupRole{Group: group, Role: role}, nil
}
