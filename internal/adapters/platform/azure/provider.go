// Package azure implements the live-inventory side of an audit on top of
// Azure Resource Graph.
package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resourcegraph/armresourcegraph"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"coverage-auditor/internal/adapters/platform/azure/limiter"
	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/core/ports"
	"coverage-auditor/internal/errors"
)

const SourceTypeAzure = "azure"

// ContainerType marks the resource-group container entry prepended for
// group-scoped audits, mirroring how Resource Graph itself types groups.
const ContainerType = "microsoft.resources/resourcegroups"

type Config struct {
	// Subscriptions narrows Resource Graph queries; empty means tenant-wide.
	Subscriptions []string `yaml:"subscriptions" mapstructure:"subscriptions"`
	// RateLimitRPS bounds outbound management-plane calls.
	RateLimitRPS int `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

type Provider struct {
	graph   resourceGraphAPI
	groups  resourceGroupsAPI
	subs    []string
	limiter *limiter.Limiter
	logger  ports.Logger
}

func NewProvider(cfg Config, cred azcore.TokenCredential, logger ports.Logger) (*Provider, error) {
	graphClient, err := armresourcegraph.NewClient(cred, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePlatformAuthError, "creating resource graph client")
	}

	// The groups client is subscription-bound; it only serves the
	// group-scope container lookup, whose failure is tolerated anyway.
	var groupsClient resourceGroupsAPI
	if len(cfg.Subscriptions) > 0 {
		gc, err := armresources.NewResourceGroupsClient(cfg.Subscriptions[0], cred, nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodePlatformAuthError, "creating resource groups client")
		}
		groupsClient = gc
	}

	plog := logger.WithFields(map[string]any{"source": SourceTypeAzure})
	return &Provider{
		graph:   graphClient,
		groups:  groupsClient,
		subs:    cfg.Subscriptions,
		limiter: limiter.New(cfg.RateLimitRPS, plog),
		logger:  plog,
	}, nil
}

// newProviderWithClients wires explicit API seams; used by tests.
func newProviderWithClients(graph resourceGraphAPI, groups resourceGroupsAPI, subs []string, logger ports.Logger) *Provider {
	return &Provider{
		graph:   graph,
		groups:  groups,
		subs:    subs,
		limiter: limiter.New(0, logger),
		logger:  logger,
	}
}

func (p *Provider) Type() string { return SourceTypeAzure }

// Query runs the scope's Resource Graph query, following pagination, and
// for group scopes prepends the group container descriptor so the audit can
// tell whether the grouping boundary itself is declared.
func (p *Provider) Query(ctx context.Context, scope domain.Scope) ([]domain.LiveResource, error) {
	query, err := buildQuery(scope)
	if err != nil {
		return nil, err
	}
	p.logger.Debugf(ctx, "Resource graph query: %s", query)

	var subscriptions []*string
	for _, sub := range p.subs {
		subscriptions = append(subscriptions, to.Ptr(sub))
	}

	resources := make([]domain.LiveResource, 0)
	var skipToken *string
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, errors.CodeInventoryUnavailable, "inventory query cancelled")
		}

		request := armresourcegraph.QueryRequest{
			Query:         to.Ptr(query),
			Subscriptions: subscriptions,
			Options: &armresourcegraph.QueryRequestOptions{
				ResultFormat: to.Ptr(armresourcegraph.ResultFormatObjectArray),
				SkipToken:    skipToken,
			},
		}

		result, err := p.graph.Resources(ctx, request, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(ctx.Err(), errors.CodeInventoryUnavailable, "inventory query timed out")
			}
			return nil, errors.WrapUserFacing(err, errors.CodeInventoryUnavailable,
				"azure resource graph query failed",
				"Check Azure credentials (az login or ARM_* service principal variables) and the scope value.")
		}

		page, err := mapRows(result.Data)
		if err != nil {
			return nil, err
		}
		resources = append(resources, page...)

		if result.SkipToken == nil || *result.SkipToken == "" {
			break
		}
		skipToken = result.SkipToken
	}

	if scope.Kind == domain.ScopeResourceGroup {
		if container, ok := p.describeContainer(ctx, scope.Value); ok {
			resources = append([]domain.LiveResource{container}, resources...)
		}
	}

	p.logger.Debugf(ctx, "Inventory query returned %d resources", len(resources))
	return resources, nil
}

// describeContainer fetches the resource group's own descriptor. Resource
// Graph only returns resources contained in a group, never the container,
// so the group-scope audit needs this extra lookup. Failure degrades to
// omission; the rest of the run is still valid.
func (p *Provider) describeContainer(ctx context.Context, groupName string) (domain.LiveResource, bool) {
	if p.groups == nil {
		p.logger.Warnf(ctx, "No subscription configured, skipping resource group container lookup")
		return domain.LiveResource{}, false
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.LiveResource{}, false
	}

	resp, err := p.groups.Get(ctx, groupName, nil)
	if err != nil {
		lookupErr := errors.Wrap(err, errors.CodeContainerLookupFailed, "resource group container lookup failed")
		p.logger.Warnf(ctx, "Could not include resource group container %q in audit: %v", groupName, lookupErr)
		return domain.LiveResource{}, false
	}

	container := domain.LiveResource{
		ID:   deref(resp.ID),
		Name: deref(resp.Name),
		Type: ContainerType,
	}
	container.Location = deref(resp.Location)
	container.Group = container.Name
	if container.ID == "" {
		return domain.LiveResource{}, false
	}
	p.logger.Debugf(ctx, "Prepending resource group container %q", groupName)
	return container, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ ports.InventorySource = (*Provider)(nil)
