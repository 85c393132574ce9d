package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier("test-secret", time.Hour)

	t.Run("should accept a token it issued", func(t *testing.T) {
		req := require.New(t)
		token, err := v.Issue(Identity{UserID: "u1", Username: "alice"})
		req.NoError(err)

		id, err := v.Verify(token)
		req.NoError(err)
		req.Equal(Identity{UserID: "u1", Username: "alice"}, id)
	})

	t.Run("should reject a foreign signature", func(t *testing.T) {
		req := require.New(t)
		token, err := NewJWTVerifier("other-secret", time.Hour).Issue(Identity{UserID: "u1"})
		req.NoError(err)

		_, err = v.Verify(token)
		req.ErrorIs(err, apperrors.ErrUnauthenticated)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		req := require.New(t)
		token, err := NewJWTVerifier("test-secret", -time.Minute).Issue(Identity{UserID: "u1"})
		req.NoError(err)

		_, err = v.Verify(token)
		req.ErrorIs(err, apperrors.ErrUnauthenticated)
	})

	t.Run("should reject a token without user id", func(t *testing.T) {
		req := require.New(t)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Username: "anon"}).SignedString([]byte("test-secret"))
		req.NoError(err)

		_, err = v.Verify(token)
		req.ErrorIs(err, apperrors.ErrUnauthenticated)
	})

	t.Run("should reject garbage and empty input", func(t *testing.T) {
		req := require.New(t)
		_, err := v.Verify("not.a.jwt")
		req.ErrorIs(err, apperrors.ErrUnauthenticated)
		_, err = v.Verify("")
		req.ErrorIs(err, apperrors.ErrUnauthenticated)
	})
}

func TestWithObserver(t *testing.T) {
	req := require.New(t)
	v := NewJWTVerifier("test-secret", time.Hour)
	var seen []Identity
	observed := WithObserver(v, func(id Identity) { seen = append(seen, id) })

	token, err := v.Issue(Identity{UserID: "u1", Username: "alice"})
	req.NoError(err)
	_, err = observed.Verify(token)
	req.NoError(err)
	_, err = observed.Verify("bad")
	req.Error(err)

	req.Equal([]Identity{{UserID: "u1", Username: "alice"}}, seen)
}

func TestMiddleware(t *testing.T) {
	v := NewJWTVerifier("test-secret", time.Hour)
	token, err := v.Issue(Identity{UserID: "u1", Username: "alice"})
	require.NoError(t, err)

	var got Identity
	handler := Middleware(v, func(w http.ResponseWriter, _ error) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"query parameter", func(r *http.Request) { r.URL.RawQuery = "token=" + token }, http.StatusOK},
		{"missing", func(*http.Request) {}, http.StatusUnauthorized},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got = Identity{}
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			req.Equal(tt.status, w.Code)
			if tt.status == http.StatusOK {
				req.Equal("u1", got.UserID)
			}
		})
	}
}
