package tokens

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTTL       = 30 * time.Minute
	RefreshTTL      = 7 * 24 * time.Hour
	VerificationTTL = 24 * time.Hour

	typRefresh = "refresh"
	typVerify  = "verify"
)

// ErrInvalidToken covers every verification failure: malformed token,
// bad signature, expiry, wrong kind. Callers get no detail beyond that.
var ErrInvalidToken = errors.New("invalid credentials")

type Claims struct {
	Typ string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256-signed stateless tokens. The
// subject is always the numeric user id rendered as a string; there is
// no server-side token record and no revocation.
type Service struct {
	Secret []byte
}

func (s *Service) IssueAccess(userID uint, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = AccessTTL
	}
	return s.sign("", userID, ttl)
}

func (s *Service) IssueRefresh(userID uint) (string, error) {
	return s.sign(typRefresh, userID, RefreshTTL)
}

func (s *Service) IssueVerification(userID uint) (string, error) {
	return s.sign(typVerify, userID, VerificationTTL)
}

func (s *Service) sign(typ string, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Typ: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

func (s *Service) ParseAccess(raw string) (uint, error) {
	return s.parse(raw, "")
}

func (s *Service) ParseRefresh(raw string) (uint, error) {
	return s.parse(raw, typRefresh)
}

func (s *Service) ParseVerification(raw string) (uint, error) {
	return s.parse(raw, typVerify)
}

func (s *Service) parse(raw, wantTyp string) (uint, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.Secret, nil
	})
	if err != nil || !tkn.Valid {
		return 0, ErrInvalidToken
	}
	if claims.Typ != wantTyp {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
