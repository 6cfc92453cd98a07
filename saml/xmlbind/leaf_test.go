package xmlbind

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/datagrid-security/saml-authz-api/saml"
)

func TestIssuerRoundTrip(t *testing.T) {
	issuer := saml.Issuer{
		Format: saml.NameIDFormatX509Subject,
		Value:  "/O=Site A/CN=PEP",
	}

	el, err := CreateIssuer(issuer)
	require.NoError(t, err)

	parsed, err := ParseIssuer(el)
	require.NoError(t, err)
	require.Equal(t, issuer, parsed)
}

func TestIssuerMissingFormatRejected(t *testing.T) {
	el := etree.NewElement("saml:Issuer")
	el.SetText("/O=Site A/CN=PEP")

	_, err := ParseIssuer(el)
	require.Error(t, err)
	require.True(t, IsStructural(err))

	var missing *MissingAttributeError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "Format", missing.Attribute)
}

func TestIssuerUnexpectedElementRejected(t *testing.T) {
	el := etree.NewElement("saml:NameID")
	el.CreateAttr("Format", saml.NameIDFormatUnspecified)

	_, err := ParseIssuer(el)

	var unexpected *UnexpectedElementError
	require.ErrorAs(t, err, &unexpected)
	require.Equal(t, "Issuer", unexpected.Expected)
	require.Equal(t, "NameID", unexpected.Actual)
}

func TestSubjectRoundTrip(t *testing.T) {
	subject := saml.Subject{
		NameID: saml.NameID{
			Format: "urn:esg:openid",
			Value:  "https://openid.localhost/philip.kershaw",
		},
	}

	el, err := CreateSubject(subject)
	require.NoError(t, err)

	parsed, err := ParseSubject(el)
	require.NoError(t, err)
	require.Equal(t, subject, parsed)
}

func TestSubjectRequiresSingleNameID(t *testing.T) {
	el := etree.NewElement("saml:Subject")
	_, err := ParseSubject(el)
	require.True(t, IsStructural(err))

	nameID := etree.NewElement("saml:NameID")
	nameID.CreateAttr("Format", saml.NameIDFormatUnspecified)
	el.AddChild(nameID)
	second := etree.NewElement("saml:NameID")
	second.CreateAttr("Format", saml.NameIDFormatUnspecified)
	el.AddChild(second)

	_, err = ParseSubject(el)
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
}

func TestStatusRoundTrip(t *testing.T) {
	status := saml.Status{
		StatusCode: saml.StatusCode{Value: saml.StatusSuccess},
	}

	el, err := CreateStatus(status)
	require.NoError(t, err)

	parsed, err := ParseStatus(el)
	require.NoError(t, err)
	require.Equal(t, status, parsed)
}

func TestStatusRequiresSingleStatusCode(t *testing.T) {
	el := etree.NewElement("samlp:Status")
	_, err := ParseStatus(el)

	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
}

func TestConditionsRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	conditions := saml.Conditions{
		NotBefore:    now,
		NotOnOrAfter: now.Add(8 * time.Hour),
	}

	el, err := CreateConditions(conditions)
	require.NoError(t, err)

	parsed, err := ParseConditions(el)
	require.NoError(t, err)
	require.Equal(t, conditions, parsed)
}

func TestConditionsMissingWindowAttributeRejected(t *testing.T) {
	el := etree.NewElement("saml:Conditions")
	el.CreateAttr("NotBefore", "2026-08-23T10:30:00.000Z")

	_, err := ParseConditions(el)

	var missing *MissingAttributeError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "NotOnOrAfter", missing.Attribute)
}

func TestConditionsExtensionListFailsLoudly(t *testing.T) {
	conditions := saml.Conditions{
		NotBefore:    time.Now(),
		NotOnOrAfter: time.Now().Add(time.Hour),
		Conditions:   []saml.Condition{fakeCondition{}},
	}

	_, err := CreateConditions(conditions)
	require.ErrorIs(t, err, ErrNotImplemented)
}

type fakeCondition struct{}

func (fakeCondition) ConditionKind() string { return "fake" }

func TestActionRoundTrip(t *testing.T) {
	action := saml.Action{
		Namespace: saml.ActionGHPPNamespace,
		Value:     saml.ActionHTTPGet,
	}

	el, err := CreateAction(action)
	require.NoError(t, err)

	parsed, err := ParseAction(el)
	require.NoError(t, err)
	require.Equal(t, action, parsed)
}

func TestActionMissingNamespaceRejected(t *testing.T) {
	el := etree.NewElement("saml:Action")
	el.SetText("GET")

	_, err := ParseAction(el)

	var missing *MissingAttributeError
	require.ErrorAs(t, err, &missing)
}
