package errors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"
	CodeTimeout          Code = "TIMEOUT_ERROR"

	// Declared-state side. StateUnavailable is fatal to a run; parse
	// problems on individual addresses degrade softly.
	CodeStateUnavailable Code = "STATE_UNAVAILABLE"
	CodeStateParseError  Code = "STATE_PARSE_ERROR"

	// Live-inventory side. InventoryUnavailable is fatal; the container
	// lookup is a tolerated, log-only failure.
	CodeInventoryUnavailable  Code = "INVENTORY_UNAVAILABLE"
	CodeContainerLookupFailed Code = "CONTAINER_LOOKUP_FAILED"
	CodePlatformAuthError     Code = "PLATFORM_AUTH_ERROR"
	CodeUnsupportedScope      Code = "UNSUPPORTED_SCOPE"
)

func (c Code) String() string {
	return string(c)
}
