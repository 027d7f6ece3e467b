package ledger

import (
	"regexp"
	"strings"
	"time"

	apperrors "workshop/internal/errors"
)

// VINs are 17 characters and never contain I, O or Q.
var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

var plateNoise = strings.NewReplacer(" ", "", "-", "", "\t", "")

// NormalizePlate upper-cases a registration plate and strips spaces and
// dashes so that "kr 1234a" and "KR1234A" collide.
func NormalizePlate(plate string) string {
	return strings.ToUpper(plateNoise.Replace(strings.TrimSpace(plate)))
}

// normalizeVIN validates an optional VIN. An empty VIN is allowed.
func normalizeVIN(vin string) (string, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if vin == "" {
		return "", nil
	}
	if !vinPattern.MatchString(vin) {
		return "", apperrors.BadRequest("vin must be 17 characters without I, O or Q")
	}
	return vin, nil
}

func checkYear(year *int, now time.Time) error {
	if year == nil {
		return nil
	}
	if *year < 1886 || *year > now.Year()+1 {
		return apperrors.BadRequest("year is out of range")
	}
	return nil
}
