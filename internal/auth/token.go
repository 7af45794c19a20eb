package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gridmesh/authcore/internal/common"
)

// Claims is the access-token claim set. The registered subject is the user
// id; email and role travel as custom claims so verifiers never need a
// directory lookup.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Verifier checks a bearer credential and derives the principal it names.
// Every resource service consumes this capability; Signer is the one
// implementation, configured (not code-shared) per service.
type Verifier interface {
	Verify(token string) (*Principal, error)
}

// Signer mints and verifies access tokens with a shared symmetric secret.
// The secret must be identical bytes in every verifying service.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner returns a Signer with the given HMAC secret and access-token
// lifetime.
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	return &Signer{secret: secret, ttl: ttl}
}

// Mint builds and signs an access token for the user. Claims: sub=userID,
// jti=random unique id, iat=now, exp=now+ttl, plus email and role.
func (s *Signer) Mint(userID, email string, role Role) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: email,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature integrity and expiry and returns the embedded
// principal. Every structural, signature or expiry failure collapses into
// common.ErrInvalidToken so callers cannot distinguish which check failed.
func (s *Signer) Verify(tokenString string) (*Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" || claims.Role == "" {
		return nil, common.ErrInvalidToken
	}

	return &Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
