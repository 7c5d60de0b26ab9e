package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the provider's JWT payload that the gateway
// reads: the subject id plus issued-at and expiry timestamps (epoch
// seconds). The provider signs its tokens but does not encrypt them, so
// the payload is readable without the signing secret.
type Claims struct {
	UserID    int
	IssuedAt  int64
	ExpiresAt int64
}

// Validation is the result of a structural token check
type Validation struct {
	Valid   bool
	Expired bool
	Claims  *Claims
}

// Validator performs structural validation of provider-issued bearer
// tokens. It never verifies signatures; a token that passes here has only
// cleared a cheap local gate. Authoritative validation is the provider's
// /users/me round trip, which checks the signature server-side.
type Validator struct {
	parser *jwt.Parser
	now    func() time.Time
}

// NewValidator creates a token validator using the real clock
func NewValidator() *Validator {
	return &Validator{
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

// NewValidatorAt creates a token validator with an injected clock
func NewValidatorAt(now func() time.Time) *Validator {
	return &Validator{
		parser: jwt.NewParser(),
		now:    now,
	}
}

// Decode parses the token payload without verifying the signature.
// Returns an error if the token is malformed or any required claim is
// missing.
func (v *Validator) Decode(token string) (*Claims, error) {
	parsed, _, err := v.parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", parsed.Claims)
	}

	id, ok := claimInt(mapClaims, "id")
	if !ok || id == 0 {
		return nil, fmt.Errorf("token missing subject id")
	}
	iat, ok := claimInt64(mapClaims, "iat")
	if !ok || iat == 0 {
		return nil, fmt.Errorf("token missing issued-at")
	}
	exp, ok := claimInt64(mapClaims, "exp")
	if !ok || exp == 0 {
		return nil, fmt.Errorf("token missing expiry")
	}

	return &Claims{
		UserID:    id,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}

// IsExpired reports whether the token's exp claim is in the past. A token
// that cannot be decoded is reported as expired.
func (v *Validator) IsExpired(token string) bool {
	claims, err := v.Decode(token)
	if err != nil {
		return true
	}
	return claims.ExpiresAt < v.now().Unix()
}

// ValidateStructure checks shape and expiry without verifying the
// signature. Structural validity is necessary but not sufficient for
// authorization: callers that need to trust the identity must still
// succeed an authoritative provider check.
func (v *Validator) ValidateStructure(token string) Validation {
	claims, err := v.Decode(token)
	if err != nil {
		return Validation{Valid: false, Expired: true}
	}

	expired := claims.ExpiresAt < v.now().Unix()
	if expired {
		return Validation{Valid: false, Expired: true}
	}

	return Validation{Valid: true, Expired: false, Claims: claims}
}

// claimInt reads an integer claim. JSON numbers decode as float64.
func claimInt(claims jwt.MapClaims, key string) (int, bool) {
	v, ok := claimInt64(claims, key)
	return int(v), ok
}

func claimInt64(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
