package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or malformed token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWrongPurpose = errors.New("token was issued for another purpose")
)

// Token kinds. Purpose tokens carry the purpose string itself (e.g. PurposePasswordReset).
const (
	KindAccess  = "access"
	KindRefresh = "refresh"

	PurposePasswordReset = "password_reset"
)

// Claims is the payload of every token the API issues.
type Claims struct {
	UserID uuid.UUID `json:"id"`
	Kind   string    `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair is returned by login, register and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer signs and verifies HS256 tokens. Refresh tokens use their own secret.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewIssuer builds an Issuer.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// Pair issues a fresh access + refresh token for userID.
func (i *Issuer) Pair(userID uuid.UUID) (TokenPair, error) {
	access, err := i.sign(userID, KindAccess, i.accessSecret, i.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.sign(userID, KindRefresh, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Purpose issues a single-use style token bound to purpose, signed with the access secret.
func (i *Issuer) Purpose(userID uuid.UUID, purpose string, ttl time.Duration) (string, error) {
	return i.sign(userID, purpose, i.accessSecret, ttl)
}

// VerifyAccess validates an access token.
func (i *Issuer) VerifyAccess(token string) (*Claims, error) {
	return i.verify(token, KindAccess, i.accessSecret)
}

// VerifyRefresh validates a refresh token.
func (i *Issuer) VerifyRefresh(token string) (*Claims, error) {
	return i.verify(token, KindRefresh, i.refreshSecret)
}

// VerifyPurpose validates a purpose token.
func (i *Issuer) VerifyPurpose(token, purpose string) (*Claims, error) {
	return i.verify(token, purpose, i.accessSecret)
}

func (i *Issuer) sign(userID uuid.UUID, kind string, secret []byte, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *Issuer) verify(raw, kind string, secret []byte) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	token, err := parser.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}
