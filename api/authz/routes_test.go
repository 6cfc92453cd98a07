package authz

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	authzservice "github.com/datagrid-security/saml-authz-api/authz"
	"github.com/datagrid-security/saml-authz-api/policy"
	"github.com/datagrid-security/saml-authz-api/saml"
	"github.com/datagrid-security/saml-authz-api/saml/xmlbind"
	"github.com/datagrid-security/saml-authz-api/soap"
)

const (
	permittedResource = "http://localhost/dap/data/my.nc.dods"
	deniedResource    = "http://localhost/dap/data/test_accessDeniedToSecuredURI"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	provider := policy.NewProviderFromMap(map[string]saml.Decision{
		permittedResource: saml.DecisionPermit,
		deniedResource:    saml.DecisionDeny,
	}, saml.DecisionDeny)

	service, err := authzservice.NewService(provider, authzservice.Config{
		IssuerValue: "/O=Test/OU=Authorisation/CN=Service Stub",
	}, zerolog.Nop())
	require.NoError(t, err)

	return Routes(service)
}

func makeSOAPRequest(t *testing.T, query saml.AuthzDecisionQuery) []byte {
	t.Helper()

	queryElem, err := xmlbind.CreateAuthzDecisionQuery(query)
	require.NoError(t, err)

	envelope := soap.NewEnvelope()
	envelope.AttachPayload(queryElem)

	data, err := envelope.Serialize()
	require.NoError(t, err)
	return data
}

func postSOAP(t *testing.T, router http.Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	request.Header.Set("Content-Type", "text/xml")
	request.Header.Set("SOAPAction",
		"http://www.oasis-open.org/committees/security")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func testQuery(resource string) saml.AuthzDecisionQuery {
	return saml.AuthzDecisionQuery{
		ID:           "query-0001",
		IssueInstant: time.Now().UTC().Truncate(time.Millisecond),
		Version:      saml.Version20,
		Issuer: saml.Issuer{
			Format: saml.NameIDFormatX509Subject,
			Value:  "/O=Site A/CN=PEP",
		},
		Subject: saml.Subject{
			NameID: saml.NameID{
				Format: "urn:esg:openid",
				Value:  "https://openid.localhost/philip.kershaw",
			},
		},
		Resource: resource,
		Actions: []saml.Action{
			{Namespace: saml.ActionGHPPNamespace, Value: saml.ActionHTTPGet},
		},
	}
}

func samlResponseFrom(t *testing.T, recorder *httptest.ResponseRecorder) saml.Response {
	t.Helper()

	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)

	envelope, err := soap.ParseEnvelope(body)
	require.NoError(t, err)

	payload, err := envelope.Payload()
	require.NoError(t, err)

	response, err := xmlbind.ParseResponse(payload, xmlbind.DefaultRegistry())
	require.NoError(t, err)
	return response
}

func TestPermittedQuery(t *testing.T) {
	router := newTestRouter(t)
	query := testQuery(permittedResource)

	recorder := postSOAP(t, router, makeSOAPRequest(t, query))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Header().Get("Content-Type"), "text/xml")

	response := samlResponseFrom(t, recorder)
	require.Equal(t, saml.StatusSuccess, response.Status.StatusCode.Value)
	require.Equal(t, query.ID, response.InResponseTo)
	require.Len(t, response.Assertions, 1)
	require.Equal(t, query.Subject.NameID.Value,
		response.Assertions[0].Subject.NameID.Value)
	require.Equal(t, saml.DecisionPermit,
		response.Assertions[0].AuthzDecisionStatements[0].Decision)
}

func TestDeniedQuery(t *testing.T) {
	router := newTestRouter(t)
	query := testQuery(deniedResource)

	recorder := postSOAP(t, router, makeSOAPRequest(t, query))
	require.Equal(t, http.StatusOK, recorder.Code)

	response := samlResponseFrom(t, recorder)

	// Service-level success is independent of the access decision
	require.Equal(t, saml.StatusSuccess, response.Status.StatusCode.Value)
	require.Equal(t, query.ID, response.InResponseTo)
	require.Equal(t, saml.DecisionDeny,
		response.Assertions[0].AuthzDecisionStatements[0].Decision)
}

func TestMalformedEnvelopeIsClientFault(t *testing.T) {
	router := newTestRouter(t)

	recorder := postSOAP(t, router, []byte("this is not xml"))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)

	envelope, err := soap.ParseEnvelope(body)
	require.NoError(t, err)

	code, _, ok := soap.ParseFault(envelope)
	require.True(t, ok)
	require.Equal(t, soap.FaultClient, code)
}

func TestStructurallyInvalidQueryIsClientFault(t *testing.T) {
	router := newTestRouter(t)

	// A valid envelope carrying a query with no Resource attribute
	query := testQuery(permittedResource)
	queryElem, err := xmlbind.CreateAuthzDecisionQuery(query)
	require.NoError(t, err)
	queryElem.RemoveAttr("Resource")

	envelope := soap.NewEnvelope()
	envelope.AttachPayload(queryElem)
	data, err := envelope.Serialize()
	require.NoError(t, err)

	recorder := postSOAP(t, router, data)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)

	parsed, err := soap.ParseEnvelope(body)
	require.NoError(t, err)

	code, message, ok := soap.ParseFault(parsed)
	require.True(t, ok)
	require.Equal(t, soap.FaultClient, code)
	require.Contains(t, message, "Resource")
}

func TestUnsupportedVersionIsClientFault(t *testing.T) {
	router := newTestRouter(t)

	query := testQuery(permittedResource)
	queryElem, err := xmlbind.CreateAuthzDecisionQuery(query)
	require.NoError(t, err)
	queryElem.RemoveAttr("Version")
	queryElem.CreateAttr("Version", "1.1")

	envelope := soap.NewEnvelope()
	envelope.AttachPayload(queryElem)
	data, err := envelope.Serialize()
	require.NoError(t, err)

	recorder := postSOAP(t, router, data)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	parsed, err := soap.ParseEnvelope(recorder.Body.Bytes())
	require.NoError(t, err)

	code, _, ok := soap.ParseFault(parsed)
	require.True(t, ok)
	require.Equal(t, soap.FaultClient, code)
}
