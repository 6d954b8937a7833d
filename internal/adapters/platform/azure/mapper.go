package azure

import (
	"github.com/go-viper/mapstructure/v2"

	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/errors"
	"coverage-auditor/pkg/azureid"
)

// resourceRow is the projected Resource Graph row shape.
type resourceRow struct {
	ID            string `mapstructure:"id"`
	Name          string `mapstructure:"name"`
	Type          string `mapstructure:"type"`
	Location      string `mapstructure:"location"`
	ResourceGroup string `mapstructure:"resourceGroup"`
}

// mapRows decodes the ObjectArray payload of a Resource Graph response into
// live resource descriptors. Rows without an id are dropped: an identifier
// is the one field reconciliation cannot work without.
func mapRows(data any) ([]domain.LiveResource, error) {
	rows, ok := data.([]any)
	if !ok {
		if data == nil {
			return []domain.LiveResource{}, nil
		}
		return nil, errors.New(errors.CodeInventoryUnavailable, "resource graph response data is not an object array")
	}

	resources := make([]domain.LiveResource, 0, len(rows))
	for _, raw := range rows {
		var row resourceRow
		if err := mapstructure.Decode(raw, &row); err != nil {
			return nil, errors.Wrap(err, errors.CodeInventoryUnavailable, "decoding resource graph row")
		}
		if row.ID == "" {
			continue
		}
		if row.Name == "" {
			row.Name = azureid.NameFromID(row.ID)
		}
		resources = append(resources, domain.LiveResource{
			ID:       row.ID,
			Type:     row.Type,
			Name:     row.Name,
			Location: row.Location,
			Group:    row.ResourceGroup,
		})
	}
	return resources, nil
}
