package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	MinTrustScore = 1
	MaxTrustScore = 10
	phoneDigits   = 10
)

// Customer is a borrower registered by a user. CreatedBy is the ownership
// anchor: it is written once at creation and never changed.
type Customer struct {
	ID         string
	Phone      string
	TrustScore int
	CreatedBy  string
	// Profile carries any additional client-supplied fields untouched.
	Profile   map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerPatch is a partial update. Phone and ownership are not patchable.
type CustomerPatch struct {
	TrustScore *int
	Profile    map[string]any
}

// reservedCustomerFields never pass through as profile data.
var reservedCustomerFields = map[string]struct{}{
	"_id":        {},
	"id":         {},
	"phone":      {},
	"trustScore": {},
	"createdBy":  {},
	"createdAt":  {},
	"updatedAt":  {},
}

// IsReservedCustomerField reports whether key is managed by the registry
// rather than being free-form profile data.
func IsReservedCustomerField(key string) bool {
	_, ok := reservedCustomerFields[key]
	return ok
}

// ParsePhone accepts a string of exactly ten ASCII digits.
func ParsePhone(v any) (string, error) {
	s, ok := v.(string)
	if !ok || len(s) != phoneDigits {
		return "", Invalid("phone", "must be exactly 10 digits")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", Invalid("phone", "must be exactly 10 digits")
		}
	}
	return s, nil
}

// ParseTrustScore accepts an integral number, or a string holding one, in
// [MinTrustScore, MaxTrustScore].
func ParseTrustScore(v any) (int, error) {
	bad := Invalid("trustScore", "must be a number between 1 and 10")

	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, bad
		}
		if t < MinTrustScore || t > MaxTrustScore {
			return 0, bad
		}
		n = int64(t)
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, bad
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, bad
		}
		n = i
	default:
		return 0, bad
	}

	if n < MinTrustScore || n > MaxTrustScore {
		return 0, bad
	}
	return int(n), nil
}
