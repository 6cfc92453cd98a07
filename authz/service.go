// Package authz implements the SAML authorization decision query service:
// it answers AuthzDecisionQuery objects with correlated responses carrying a
// signed-shape assertion bounded by a configured validity window.
package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/datagrid-security/saml-authz-api/env"
	"github.com/datagrid-security/saml-authz-api/saml"
)

// DefaultValidityWindow is how long issued assertions stay valid when no
// window is configured
const DefaultValidityWindow = 8 * time.Hour

// DecisionProvider is the policy decision engine boundary. The service only
// defines the shape of its input and output; the decision algorithm lives
// behind this interface.
type DecisionProvider interface {
	Decide(ctx context.Context, query *saml.AuthzDecisionQuery) (saml.Decision, error)
}

// Config carries the service's issuer identity and validity window
type Config struct {
	IssuerValue    string
	IssuerFormat   string
	ValidityWindow time.Duration
}

// ConfigFromEnv loads the service configuration from the environment.
// AUTHZ_ISSUER_VALUE is required; format and validity window have defaults.
func ConfigFromEnv() (Config, error) {
	issuerValue, err := env.GetEnv("authorization service issuer", "AUTHZ_ISSUER_VALUE")
	if err != nil {
		return Config{}, err
	}

	issuerFormat := env.GetEnvDefault("AUTHZ_ISSUER_FORMAT",
		saml.NameIDFormatX509Subject)

	validityWindow := DefaultValidityWindow
	if _, ok := env.LookupEnv("AUTHZ_VALIDITY_WINDOW"); ok {
		validityWindow, err = env.GetDurationEnv(
			"assertion validity window", "AUTHZ_VALIDITY_WINDOW")
		if err != nil {
			return Config{}, err
		}
	}

	return Config{
		IssuerValue:    issuerValue,
		IssuerFormat:   issuerFormat,
		ValidityWindow: validityWindow,
	}, nil
}

// Service answers authorization decision queries. It is stateless per
// request; every response and assertion is constructed fresh.
type Service struct {
	provider       DecisionProvider
	issuer         saml.Issuer
	validityWindow time.Duration
	logger         zerolog.Logger

	// now is swappable so tests can pin the clock
	now func() time.Time
}

// NewService validates the configuration and constructs the service.
// A non-positive validity window would produce assertions that are never
// valid (NotBefore >= NotOnOrAfter), so it is rejected here.
func NewService(provider DecisionProvider, config Config, logger zerolog.Logger) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("a decision provider is required")
	}
	if config.IssuerValue == "" {
		return nil, fmt.Errorf("an issuer value is required")
	}

	issuerFormat := config.IssuerFormat
	if issuerFormat == "" {
		issuerFormat = saml.NameIDFormatX509Subject
	}

	validityWindow := config.ValidityWindow
	if validityWindow == 0 {
		validityWindow = DefaultValidityWindow
	}
	if validityWindow < 0 {
		return nil, fmt.Errorf("validity window must be positive; got %s",
			validityWindow)
	}

	return &Service{
		provider: provider,
		issuer: saml.Issuer{
			Format: issuerFormat,
			Value:  config.IssuerValue,
		},
		validityWindow: validityWindow,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// ValidityWindow returns the configured assertion validity duration
func (s *Service) ValidityWindow() time.Duration {
	return s.validityWindow
}

// HandleQuery answers a single authorization decision query.
//
// The response is correlated to the query (InResponseTo equals the query ID,
// with a freshly generated distinct response ID) and carries exactly one
// assertion whose subject is copied verbatim from the query. A decision
// provider failure yields a Responder status with no assertion; it is never
// converted into a Deny decision.
func (s *Service) HandleQuery(ctx context.Context, query *saml.AuthzDecisionQuery) (*saml.Response, error) {
	now := s.now().UTC().Truncate(time.Millisecond)

	responseID, err := ksuid.NewRandom()
	if err != nil {
		return nil, err
	}

	response := &saml.Response{
		ID:           responseID.String(),
		InResponseTo: query.ID,
		IssueInstant: now,
		Version:      saml.Version20,
	}
	issuer := s.issuer
	response.Issuer = &issuer

	decision, err := s.provider.Decide(ctx, query)
	if err == nil && !decision.Valid() {
		err = fmt.Errorf("decision provider returned unknown decision '%s'",
			decision)
	}
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("query_id", query.ID).
			Str("resource", query.Resource).
			Msg("decision provider failed; returning responder status")

		response.Status = saml.Status{
			StatusCode: saml.StatusCode{Value: saml.StatusResponder},
		}
		return response, nil
	}

	assertionID, err := ksuid.NewRandom()
	if err != nil {
		return nil, err
	}

	subject := query.Subject
	assertion := saml.Assertion{
		ID:           assertionID.String(),
		IssueInstant: now,
		Version:      saml.Version20,
		Issuer:       &issuer,
		Subject:      &subject,
		Conditions: &saml.Conditions{
			NotBefore:    now,
			NotOnOrAfter: now.Add(s.validityWindow),
		},
		AuthzDecisionStatements: []saml.AuthzDecisionStatement{
			{
				Resource: query.Resource,
				Decision: decision,
				Actions:  append([]saml.Action(nil), query.Actions...),
			},
		},
	}

	response.Status = saml.Status{
		StatusCode: saml.StatusCode{Value: saml.StatusSuccess},
	}
	response.Assertions = []saml.Assertion{assertion}

	s.logger.Info().
		Str("query_id", query.ID).
		Str("response_id", response.ID).
		Str("resource", query.Resource).
		Str("decision", string(decision)).
		Msg("issued authorization decision")

	return response, nil
}
