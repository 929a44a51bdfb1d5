package constants

import (
	"strings"
)

type ClaimType string

const (
	ClaimHealth   ClaimType = "health"
	ClaimLife     ClaimType = "life"
	ClaimVehicle  ClaimType = "vehicle"
	ClaimTravel   ClaimType = "travel"
	ClaimProperty ClaimType = "property"
)

var allClaimTypes = []ClaimType{
	ClaimHealth,
	ClaimLife,
	ClaimVehicle,
	ClaimTravel,
	ClaimProperty,
}

// ClaimTypesAsStrings returns the known claim types in stable order.
func ClaimTypesAsStrings() []string {
	result := make([]string, len(allClaimTypes))
	for i, ct := range allClaimTypes {
		result[i] = string(ct)
	}
	return result
}

var claimTypeSynonyms = map[string]ClaimType{
	"medical":         ClaimHealth,
	"hospital":        ClaimHealth,
	"hospitalization": ClaimHealth,
	"mediclaim":       ClaimHealth,
	"death":           ClaimLife,
	"term life":       ClaimLife,
	"motor":           ClaimVehicle,
	"auto":            ClaimVehicle,
	"car":             ClaimVehicle,
	"automobile":      ClaimVehicle,
	"vehicle damage":  ClaimVehicle,
	"trip":            ClaimTravel,
	"flight":          ClaimTravel,
	"baggage":         ClaimTravel,
	"home":            ClaimProperty,
	"house":           ClaimProperty,
	"fire":            ClaimProperty,
	"theft":           ClaimProperty,
}

// CanonicalizeClaimType maps free text to a known claim type. The second
// result is false when no mapping exists.
func CanonicalizeClaimType(input string) (ClaimType, bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(input), " "))
	if normalized == "" {
		return "", false
	}
	normalized = strings.TrimSuffix(normalized, " claim")
	normalized = strings.TrimSuffix(normalized, " insurance")

	if ct, ok := claimTypeSynonyms[normalized]; ok {
		return ct, true
	}
	for _, ct := range allClaimTypes {
		if normalized == string(ct) {
			return ct, true
		}
	}
	return "", false
}
