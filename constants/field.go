package constants

// FieldName is a member of the closed claim field vocabulary.
type FieldName string

const (
	FieldClaimType        FieldName = "claim_type"
	FieldAmount           FieldName = "amount"
	FieldDateOfIncident   FieldName = "date_of_incident"
	FieldPolicyNumber     FieldName = "policy_number"
	FieldClaimantName     FieldName = "claimant_name"
	FieldSignaturePresent FieldName = "signature_present"
)

// Fields lists the vocabulary in its stable output order.
var Fields = []FieldName{
	FieldClaimType,
	FieldAmount,
	FieldDateOfIncident,
	FieldPolicyNumber,
	FieldClaimantName,
	FieldSignaturePresent,
}

// IsField reports whether name belongs to the vocabulary.
func IsField(name string) bool {
	for _, f := range Fields {
		if string(f) == name {
			return true
		}
	}
	return false
}
