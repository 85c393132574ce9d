package auth

import (
	"fmt"
	"time"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/golang-jwt/jwt/v4"
)

// Identity is what a verified credential says about its holder.
type Identity struct {
	UserID   string
	Username string
}

// Verifier turns a bearer credential into an Identity or fails with
// ErrUnauthenticated.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// Claims is the token contract shared with the user service.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTVerifier(secret string, ttl time.Duration) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), ttl: ttl}
}

func (v *JWTVerifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, fmt.Errorf("%w: missing token", apperrors.ErrUnauthenticated)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return Identity{}, fmt.Errorf("%w: invalid claims", apperrors.ErrUnauthenticated)
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// Issue signs a token for id. The user service normally does this; it is
// kept here for tooling and tests.
func (v *JWTVerifier) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// ObserveFunc is called with every identity a verifier accepts.
type ObserveFunc func(Identity)

type observingVerifier struct {
	next    Verifier
	observe ObserveFunc
}

// WithObserver wraps next so that observe sees each accepted identity.
func WithObserver(next Verifier, observe ObserveFunc) Verifier {
	return &observingVerifier{next: next, observe: observe}
}

func (o *observingVerifier) Verify(token string) (Identity, error) {
	id, err := o.next.Verify(token)
	if err == nil {
		o.observe(id)
	}
	return id, err
}
