package constants

// Severity grades a flag.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Action is the decision outcome of an analysis.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReview  Action = "review"
	ActionReject  Action = "reject"
)

// Stable flag codes. Consumers key on these exact strings.
const (
	FlagFutureDate            = "FUTURE_DATE"
	FlagStaleClaim            = "STALE_CLAIM"
	FlagAmountOutOfRange      = "AMOUNT_OUT_OF_RANGE"
	FlagMissingSignature      = "MISSING_SIGNATURE"
	FlagLowConfidenceField    = "LOW_CONFIDENCE_FIELD"
	FlagUnparseableField      = "UNPARSEABLE_FIELD"
	FlagPolicyNotFound        = "POLICY_NOT_FOUND"
	FlagUnknownClaimType      = "UNKNOWN_CLAIM_TYPE"
	FlagExtractionUnavailable = "EXTRACTION_UNAVAILABLE"
)
