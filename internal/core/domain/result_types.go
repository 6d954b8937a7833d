package domain

type MatchConfidence string

const (
	ConfidenceHigh   MatchConfidence = "high"
	ConfidenceMedium MatchConfidence = "medium"
)

type MatchMethod string

const (
	MethodIdentifier    MatchMethod = "identifier"
	MethodName          MatchMethod = "name"
	MethodNameTypeHint  MatchMethod = "name-with-type-hint"
	MethodNameAmbiguous MatchMethod = "name-ambiguous"
)

// MatchedResource pairs a live resource with the declared address that
// claimed it. Confidence is high only for identifier matches; every
// name-based match is medium, with MethodNameAmbiguous flagging a
// best-effort tie-break rather than a confident match.
type MatchedResource struct {
	LiveID       string
	LiveType     string
	LiveName     string
	Address      string
	DeclaredType string
	Confidence   MatchConfidence
	Method       MatchMethod
}

// MissingResource is a live resource with no declared counterpart.
type MissingResource struct {
	ID       string
	Type     string
	Name     string
	Location string
	Reason   string
	// ImportDirective is a ready-to-use remediation hint referencing the
	// live resource ID, so export tooling needs no re-derivation.
	ImportDirective string
}

// OrphanedResource is a declared address with no live counterpart.
type OrphanedResource struct {
	Address      string
	DeclaredType string
	DeclaredName string
	Reason       string
}

// CoverageReport is the aggregate result of one audit run.
type CoverageReport struct {
	TotalLive          int
	TotalDeclared      int
	ManagedCount       int
	CoveragePercentage float64
	Matched            []MatchedResource
	Missing            []MissingResource
	Orphaned           []OrphanedResource
	Recommendations    []string
}
