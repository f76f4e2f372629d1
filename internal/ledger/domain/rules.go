package domain

import (
	"encoding/base64"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email,max=254") == nil
}

// DepositPercentages are the only deposit sizes offered to clients.
var DepositPercentages = []int{25, 50, 100}

func ValidDepositPercentage(pct int) bool {
	for _, p := range DepositPercentages {
		if p == pct {
			return true
		}
	}
	return false
}

// DepositAmountCents is the midpoint of the price range scaled by pct,
// rounded half away from zero. With cents in integers:
//
//	(low+high)/2 * pct/100 = (low+high)*pct / 200
func DepositAmountCents(lowCents, highCents int64, pct int) (int64, error) {
	if !ValidDepositPercentage(pct) || lowCents < 0 || highCents < lowCents {
		return 0, ErrInvalidInput
	}
	num := (lowCents + highCents) * int64(pct)
	return (num + 100) / 200, nil
}

// ValidateAcceptance checks a public acceptance before it touches the store.
func ValidateAcceptance(a Acceptance, minSignatureBytes int) error {
	if strings.TrimSpace(a.Name) == "" || !ValidEmail(a.Email) {
		return ErrInvalidInput
	}
	return ValidateSignature(a.Signature, minSignatureBytes)
}

// ValidateSignature rejects trivially empty signature images. The payload
// is an image data URL ("data:image/png;base64,....") whose decoded image must
// be at least minBytes long; a blank canvas encodes to a few hundred bytes.
func ValidateSignature(sig string, minBytes int) error {
	mime, payload, ok := strings.Cut(sig, ",")
	if !ok || !strings.HasPrefix(mime, "data:image/") || !strings.HasSuffix(mime, ";base64") {
		return ErrInvalidSignature
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ErrInvalidSignature
	}
	if len(raw) < minBytes {
		return ErrInvalidSignature
	}
	return nil
}
