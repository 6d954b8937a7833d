package domain

// DeclaredResource is one managed resource instance read from Terraform
// state. Entries are rebuilt from scratch on every audit run and never
// mutated afterwards.
type DeclaredResource struct {
	// Address uniquely identifies the instance within state, e.g.
	// azurerm_storage_account.main or azurerm_subnet.internal[0].
	Address      string
	DeclaredType string
	DeclaredName string
	// ProviderID is the Azure resource ID recorded in state at apply time.
	// Empty when the state is malformed or the type exposes no id; such
	// entries participate in name-based matching only.
	ProviderID string
	// NormalizedName is the case-folded, separator-stripped form of
	// DeclaredName used for fuzzy matching.
	NormalizedName string
}

// LiveResource is one resource descriptor returned by the inventory query.
type LiveResource struct {
	ID       string
	Type     string
	Name     string
	Location string
	Group    string
}
