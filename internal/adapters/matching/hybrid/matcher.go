// Package hybrid correlates live Azure resources with declared Terraform
// state entries using two strategies: exact provider-ID match, then
// normalized-name match with a type-aware tie-break.
package hybrid

import (
	"context"
	"sort"
	"strings"

	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/core/ports"
	"coverage-auditor/pkg/azureid"
)

const MatcherTypeHybrid = "hybrid"

type Matcher struct {
	logger ports.Logger
}

func NewMatcher(logger ports.Logger) *Matcher {
	return &Matcher{logger: logger}
}

func (m *Matcher) Type() string { return MatcherTypeHybrid }

// Match partitions live resources into matched/missing and leftover
// declared addresses into orphaned. The declared indices shrink as
// addresses are consumed, so no two live resources can claim the same
// address. Candidate lists are kept in lexicographic address order, which
// pins the ambiguous tie-break and makes runs deterministic.
func (m *Matcher) Match(
	ctx context.Context,
	live []domain.LiveResource,
	declared map[string]domain.DeclaredResource,
) (ports.MatchOutcome, error) {

	m.logger.Debugf(ctx, "Starting hybrid matching (%d live, %d declared)", len(live), len(declared))

	byProviderID := make(map[string]string, len(declared))
	byName := make(map[string][]string)
	for addr, res := range declared {
		if res.ProviderID != "" {
			byProviderID[azureid.NormalizeID(res.ProviderID)] = addr
		}
		if res.NormalizedName != "" {
			byName[res.NormalizedName] = append(byName[res.NormalizedName], addr)
		}
	}
	for name := range byName {
		sort.Strings(byName[name])
	}
	m.logger.Debugf(ctx, "Built lookup indices: %d provider IDs, %d normalized names", len(byProviderID), len(byName))

	outcome := ports.MatchOutcome{
		Matched:  make([]domain.MatchedResource, 0, len(live)),
		Missing:  make([]domain.MissingResource, 0),
		Orphaned: make([]domain.OrphanedResource, 0),
	}
	consumed := make(map[string]struct{}, len(declared))

	for _, res := range live {
		if ctx.Err() != nil {
			return ports.MatchOutcome{}, ctx.Err()
		}

		address, method := m.matchOne(res, declared, byProviderID, byName)
		if address == "" {
			outcome.Missing = append(outcome.Missing, domain.MissingResource{
				ID:       res.ID,
				Type:     res.Type,
				Name:     liveName(res),
				Location: liveLocation(res),
				Reason:   "Not found in Terraform state",
			})
			continue
		}

		entry := declared[address]
		confidence := domain.ConfidenceMedium
		if method == domain.MethodIdentifier {
			confidence = domain.ConfidenceHigh
		}
		outcome.Matched = append(outcome.Matched, domain.MatchedResource{
			LiveID:       res.ID,
			LiveType:     res.Type,
			LiveName:     liveName(res),
			Address:      address,
			DeclaredType: entry.DeclaredType,
			Confidence:   confidence,
			Method:       method,
		})
		consumed[address] = struct{}{}
		consume(entry, address, byProviderID, byName)
		m.logger.Debugf(ctx, "Matched %s to %s via %s", res.ID, address, method)
	}

	orphanAddrs := make([]string, 0, len(declared))
	for addr := range declared {
		if _, ok := consumed[addr]; !ok {
			orphanAddrs = append(orphanAddrs, addr)
		}
	}
	sort.Strings(orphanAddrs)
	for _, addr := range orphanAddrs {
		entry := declared[addr]
		outcome.Orphaned = append(outcome.Orphaned, domain.OrphanedResource{
			Address:      addr,
			DeclaredType: entry.DeclaredType,
			DeclaredName: entry.DeclaredName,
			Reason:       "Resource not found in Azure or could not be matched",
		})
	}

	m.logger.Debugf(ctx, "Matching complete: %d matched, %d missing, %d orphaned",
		len(outcome.Matched), len(outcome.Missing), len(outcome.Orphaned))
	return outcome, nil
}

// matchOne applies the strategies in order. Identifier matches are
// authoritative and always win; name matches fall through singleton,
// type-hint, and first-candidate tie-break.
func (m *Matcher) matchOne(
	res domain.LiveResource,
	declared map[string]domain.DeclaredResource,
	byProviderID map[string]string,
	byName map[string][]string,
) (string, domain.MatchMethod) {

	if addr, ok := byProviderID[azureid.NormalizeID(res.ID)]; ok {
		return addr, domain.MethodIdentifier
	}

	candidates := byName[azureid.Normalize(azureid.NameFromID(res.ID))]
	switch len(candidates) {
	case 0:
		return "", ""
	case 1:
		return candidates[0], domain.MethodName
	}

	typeToken := azureid.TypeToken(res.Type)
	if typeToken != "" {
		for _, addr := range candidates {
			if strings.Contains(strings.ToLower(declared[addr].DeclaredType), typeToken) {
				return addr, domain.MethodNameTypeHint
			}
		}
	}
	return candidates[0], domain.MethodNameAmbiguous
}

func consume(entry domain.DeclaredResource, address string, byProviderID map[string]string, byName map[string][]string) {
	if entry.ProviderID != "" {
		delete(byProviderID, azureid.NormalizeID(entry.ProviderID))
	}
	if entry.NormalizedName == "" {
		return
	}
	remaining := byName[entry.NormalizedName][:0]
	for _, addr := range byName[entry.NormalizedName] {
		if addr != address {
			remaining = append(remaining, addr)
		}
	}
	if len(remaining) == 0 {
		delete(byName, entry.NormalizedName)
		return
	}
	byName[entry.NormalizedName] = remaining
}

func liveName(res domain.LiveResource) string {
	if res.Name != "" {
		return res.Name
	}
	return azureid.NameFromID(res.ID)
}

// liveLocation keeps the missing-resource table readable when the
// inventory row carried no location.
func liveLocation(res domain.LiveResource) string {
	if res.Location != "" {
		return res.Location
	}
	return "unknown"
}

var _ ports.Matcher = (*Matcher)(nil)
