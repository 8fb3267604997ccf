package care

import "pet-care-tracker/internal/domain/validation"

const (
	MaxAmountG           = 1000.0
	MaxNoteLen           = 500
	MaxIdempotencyKeyLen = 100
)

// ValidateApply valida el cuerpo de "perform care" antes de tocar los stores.
// careType llega crudo (string) porque un valor fuera del enum es error de validación.
func ValidateApply(petID, careType string, amountG *float64, note, idempotencyKey string) validation.Result {
	var r validation.Result

	r.Required("petId", petID)
	if r.Required("careType", careType) {
		if _, err := ParseCareType(careType); err != nil {
			r.Add("careType", validation.CodeInvalidValue)
		}
	}
	r.PositiveFloatMax("amountG", amountG, MaxAmountG)
	r.MaxLen("note", note, MaxNoteLen)
	r.MaxLen("idempotencyKey", idempotencyKey, MaxIdempotencyKeyLen)

	return r
}
