package terraform

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/errors"
	"coverage-auditor/pkg/azureid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Raw state document as produced by `terraform state pull` (state v4).
// Only the fields the detail index needs are decoded.
type (
	rawState struct {
		Version   int           `json:"version"`
		Resources []rawResource `json:"resources"`
	}

	rawResource struct {
		Module    string        `json:"module,omitempty"`
		Mode      string        `json:"mode"`
		Type      string        `json:"type"`
		Name      string        `json:"name"`
		Instances []rawInstance `json:"instances"`
	}

	rawInstance struct {
		IndexKey   any            `json:"index_key,omitempty"`
		Attributes map[string]any `json:"attributes"`
	}
)

func parseRawState(data []byte) (*rawState, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.CodeStateParseError, "state document is empty")
	}
	var state rawState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, errors.CodeStateParseError, "invalid JSON in state document")
	}
	return &state, nil
}

// instanceAddress builds the canonical address for one instance: base
// `type.name` (module-prefixed when present), plus `[N]` for a numeric
// index and `["K"]` for a for_each string key.
func instanceAddress(res *rawResource, inst *rawInstance) string {
	addr := res.Type + "." + res.Name
	if res.Module != "" {
		addr = res.Module + "." + addr
	}
	switch key := inst.IndexKey.(type) {
	case nil:
		return addr
	case string:
		return fmt.Sprintf("%s[%q]", addr, key)
	case float64:
		// JSON numbers decode as float64; state index keys are integral.
		return fmt.Sprintf("%s[%d]", addr, int(key))
	case int:
		return fmt.Sprintf("%s[%d]", addr, key)
	default:
		return fmt.Sprintf("%s[%v]", addr, key)
	}
}

// collectRawDetails walks a raw state document and resolves every managed
// instance whose address is in the requested set. Data sources are skipped;
// instances without an id attribute keep an empty ProviderID and will only
// participate in name-based matching.
func collectRawDetails(state *rawState, requested map[string]struct{}) map[string]domain.DeclaredResource {
	details := make(map[string]domain.DeclaredResource)
	if state == nil {
		return details
	}
	for i := range state.Resources {
		res := &state.Resources[i]
		if res.Mode != "managed" {
			continue
		}
		for j := range res.Instances {
			inst := &res.Instances[j]
			addr := instanceAddress(res, inst)
			if _, ok := requested[addr]; !ok {
				continue
			}
			providerID, _ := inst.Attributes["id"].(string)
			details[addr] = domain.DeclaredResource{
				Address:        addr,
				DeclaredType:   res.Type,
				DeclaredName:   res.Name,
				ProviderID:     providerID,
				NormalizedName: azureid.Normalize(res.Name),
			}
		}
	}
	return details
}
