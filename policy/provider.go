// Package policy is a static decision provider: a resource-URI-to-decision
// map loaded from a JSON file, with a configurable default for resources the
// map does not name. It stands in for a real policy decision engine behind
// the authz.DecisionProvider boundary.
package policy

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/datagrid-security/saml-authz-api/env"
	"github.com/datagrid-security/saml-authz-api/saml"
)

// policyFile is the JSON shape of the decision map on disk
type policyFile struct {
	Resources map[string]string `json:"resources"`
	Default   string            `json:"default"`
}

// Provider maps resource URIs to access decisions
type Provider struct {
	mu              sync.RWMutex
	path            string
	decisions       map[string]saml.Decision
	defaultDecision saml.Decision
}

// NewProvider creates a provider from the environment.
// POLICY_FILE names the decision map (loaded on Connect); POLICY_DEFAULT_DECISION
// overrides the default verdict for unmapped resources (Deny when unset).
func NewProvider() (*Provider, error) {
	path := env.GetEnvDefault("POLICY_FILE", "")

	defaultDecision := saml.DecisionDeny
	if value, ok := env.LookupEnv("POLICY_DEFAULT_DECISION"); ok {
		parsed, err := saml.ParseDecision(value)
		if err != nil {
			return nil, errors.Wrap(err, "invalid POLICY_DEFAULT_DECISION")
		}
		defaultDecision = parsed
	}

	return &Provider{
		path:            path,
		decisions:       map[string]saml.Decision{},
		defaultDecision: defaultDecision,
	}, nil
}

// NewProviderFromMap creates a provider with a fixed decision map,
// primarily for tests and embedding
func NewProviderFromMap(decisions map[string]saml.Decision, defaultDecision saml.Decision) *Provider {
	copied := make(map[string]saml.Decision, len(decisions))
	for resource, decision := range decisions {
		copied[resource] = decision
	}

	return &Provider{
		decisions:       copied,
		defaultDecision: defaultDecision,
	}
}

// Connect loads the decision map from the configured policy file.
// A provider with no policy file keeps its (empty) map and serves the
// default decision for everything.
func (p *Provider) Connect(ctx context.Context) error {
	if p.path == "" {
		return nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return errors.Wrapf(err, "could not read policy file '%s'", p.path)
	}

	var file policyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.Wrapf(err, "could not parse policy file '%s'", p.path)
	}

	decisions := make(map[string]saml.Decision, len(file.Resources))
	for resource, value := range file.Resources {
		decision, err := saml.ParseDecision(value)
		if err != nil {
			return errors.Wrapf(err, "invalid decision for resource '%s'", resource)
		}
		decisions[resource] = decision
	}

	defaultDecision := p.defaultDecision
	if file.Default != "" {
		defaultDecision, err = saml.ParseDecision(file.Default)
		if err != nil {
			return errors.Wrap(err, "invalid default decision")
		}
	}

	p.mu.Lock()
	p.decisions = decisions
	p.defaultDecision = defaultDecision
	p.mu.Unlock()

	return nil
}

// Disconnect releases provider resources (none are held)
func (p *Provider) Disconnect(ctx context.Context) error {
	return nil
}

// Decide implements authz.DecisionProvider from the loaded map
func (p *Provider) Decide(ctx context.Context, query *saml.AuthzDecisionQuery) (saml.Decision, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if decision, ok := p.decisions[query.Resource]; ok {
		return decision, nil
	}
	return p.defaultDecision, nil
}
