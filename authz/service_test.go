package authz

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/datagrid-security/saml-authz-api/saml"
)

// stubProvider returns canned decisions per resource, or a fixed error
type stubProvider struct {
	decisions map[string]saml.Decision
	err       error
}

func (s stubProvider) Decide(ctx context.Context, query *saml.AuthzDecisionQuery) (saml.Decision, error) {
	if s.err != nil {
		return "", s.err
	}
	if decision, ok := s.decisions[query.Resource]; ok {
		return decision, nil
	}
	return saml.DecisionDeny, nil
}

func testQuery(resource string) *saml.AuthzDecisionQuery {
	return &saml.AuthzDecisionQuery{
		ID:           "q-1234",
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

func newTestService(t *testing.T, provider DecisionProvider, window time.Duration) *Service {
	t.Helper()
	service, err := NewService(provider, Config{
		IssuerValue:    "/O=Test/OU=Authorisation/CN=Service Stub",
		ValidityWindow: window,
	}, zerolog.Nop())
	require.NoError(t, err)
	return service
}

func TestHandleQueryCorrelation(t *testing.T) {
	service := newTestService(t, stubProvider{
		decisions: map[string]saml.Decision{},
	}, 0)

	query := testQuery("http://localhost/dap/data/")
	response, err := service.HandleQuery(context.Background(), query)
	require.NoError(t, err)

	require.Equal(t, query.ID, response.InResponseTo)
	require.NotEmpty(t, response.ID)
	require.NotEqual(t, query.ID, response.ID)
	require.Equal(t, saml.Version20, response.Version)
}

func TestHandleQueryValidityWindow(t *testing.T) {
	service := newTestService(t, stubProvider{
		decisions: map[string]saml.Decision{
			"http://localhost/dap/data/": saml.DecisionPermit,
		},
	}, 0)

	fixed := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	response, err := service.HandleQuery(context.Background(),
		testQuery("http://localhost/dap/data/"))
	require.NoError(t, err)
	require.Len(t, response.Assertions, 1)

	conditions := response.Assertions[0].Conditions
	require.NotNil(t, conditions)
	require.Equal(t, fixed, conditions.NotBefore)
	require.Equal(t, DefaultValidityWindow,
		conditions.NotOnOrAfter.Sub(conditions.NotBefore))
	require.Equal(t, fixed, response.IssueInstant)
}

func TestHandleQueryConfiguredWindow(t *testing.T) {
	service := newTestService(t, stubProvider{
		decisions: map[string]saml.Decision{
			"r1": saml.DecisionPermit,
		},
	}, 30*time.Minute)

	response, err := service.HandleQuery(context.Background(), testQuery("r1"))
	require.NoError(t, err)

	conditions := response.Assertions[0].Conditions
	require.Equal(t, 30*time.Minute,
		conditions.NotOnOrAfter.Sub(conditions.NotBefore))
}

func TestHandleQuerySubjectPassThrough(t *testing.T) {
	service := newTestService(t, stubProvider{
		decisions: map[string]saml.Decision{
			"r1": saml.DecisionPermit,
		},
	}, 0)

	query := testQuery("r1")
	response, err := service.HandleQuery(context.Background(), query)
	require.NoError(t, err)

	subject := response.Assertions[0].Subject
	require.NotNil(t, subject)
	require.Equal(t, query.Subject.NameID.Value, subject.NameID.Value)
	require.Equal(t, query.Subject.NameID.Format, subject.NameID.Format)
}

func TestHandleQueryDecisionPropagation(t *testing.T) {
	service := newTestService(t, stubProvider{
		decisions: map[string]saml.Decision{
			"http://localhost/dap/data/my.nc.dods": saml.DecisionPermit,
			"http://localhost/dap/data/secured":    saml.DecisionDeny,
		},
	}, 0)

	permitted, err := service.HandleQuery(context.Background(),
		testQuery("http://localhost/dap/data/my.nc.dods"))
	require.NoError(t, err)
	require.Equal(t, saml.StatusSuccess, permitted.Status.StatusCode.Value)
	require.Equal(t, saml.DecisionPermit,
		permitted.Assertions[0].AuthzDecisionStatements[0].Decision)

	denied, err := service.HandleQuery(context.Background(),
		testQuery("http://localhost/dap/data/secured"))
	require.NoError(t, err)

	// Service-level success is independent of the access decision
	require.Equal(t, saml.StatusSuccess, denied.Status.StatusCode.Value)
	require.Equal(t, saml.DecisionDeny,
		denied.Assertions[0].AuthzDecisionStatements[0].Decision)
}

func TestHandleQueryStatementShape(t *testing.T) {
	service := newTestService(t, stubProvider{
		decisions: map[string]saml.Decision{
			"r1": saml.DecisionPermit,
		},
	}, 0)

	query := testQuery("r1")
	response, err := service.HandleQuery(context.Background(), query)
	require.NoError(t, err)

	require.Len(t, response.Assertions, 1)
	assertion := response.Assertions[0]
	require.Len(t, assertion.AuthzDecisionStatements, 1)

	statement := assertion.AuthzDecisionStatements[0]
	require.Equal(t, query.Resource, statement.Resource)
	require.Equal(t, query.Actions, statement.Actions)
	require.NotNil(t, assertion.Issuer)
	require.Equal(t, "/O=Test/OU=Authorisation/CN=Service Stub",
		assertion.Issuer.Value)
}

func TestHandleQueryProviderFailureIsNotADeny(t *testing.T) {
	service := newTestService(t, stubProvider{
		err: errors.New("policy engine unavailable"),
	}, 0)

	query := testQuery("r1")
	response, err := service.HandleQuery(context.Background(), query)
	require.NoError(t, err)

	require.Equal(t, saml.StatusResponder, response.Status.StatusCode.Value)
	require.Empty(t, response.Assertions)
	require.Equal(t, query.ID, response.InResponseTo)
}

func TestHandleQueryRejectsUnknownProviderDecision(t *testing.T) {
	service := newTestService(t, stubProvider{
		decisions: map[string]saml.Decision{
			"r1": saml.Decision("Maybe"),
		},
	}, 0)

	response, err := service.HandleQuery(context.Background(), testQuery("r1"))
	require.NoError(t, err)
	require.Equal(t, saml.StatusResponder, response.Status.StatusCode.Value)
	require.Empty(t, response.Assertions)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(nil, Config{IssuerValue: "x"}, zerolog.Nop())
	require.Error(t, err)

	_, err = NewService(stubProvider{}, Config{}, zerolog.Nop())
	require.Error(t, err)

	_, err = NewService(stubProvider{}, Config{
		IssuerValue:    "x",
		ValidityWindow: -time.Hour,
	}, zerolog.Nop())
	require.Error(t, err)

	service, err := NewService(stubProvider{}, Config{IssuerValue: "x"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, DefaultValidityWindow, service.ValidityWindow())
}
