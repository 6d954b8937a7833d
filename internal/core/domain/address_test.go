package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		address  string
		wantType string
		wantName string
	}{
		{"azurerm_storage_account.main", "azurerm_storage_account", "main"},
		{"azurerm_subnet.internal[0]", "azurerm_subnet", "internal"},
		{`azurerm_storage_container.data["primary"]`, "azurerm_storage_container", "data"},
		{"module.network.azurerm_virtual_network.main", "azurerm_virtual_network", "main"},
		{`module.network.azurerm_subnet.internal["a"]`, "azurerm_subnet", "internal"},
		{"module.platform.module.network.azurerm_subnet.internal", "azurerm_subnet", "internal"},
		{"azurerm_dns_a_record.api.example", "azurerm_dns_a_record", "api.example"},
		{"orphan", "", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			gotType, gotName := ParseAddress(tt.address)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantName, gotName)
		})
	}
}
