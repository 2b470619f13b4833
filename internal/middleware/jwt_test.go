package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func runJWT(t *testing.T, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthInjectsStoreIdentity(t *testing.T) {
	tok := signToken(t, testSecret, jwt.MapClaims{"store_id": "store_1", "customer_id": "cust_1"})
	rec, c := runJWT(t, "Bearer "+tok)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "store_1", c.Get("store_id"))
	assert.Equal(t, "cust_1", c.Get("customer_id"))
}

func TestJWTAuthFallsBackToSubClaim(t *testing.T) {
	tok := signToken(t, testSecret, jwt.MapClaims{"sub": "store_9"})
	rec, c := runJWT(t, "Bearer "+tok)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "store_9", c.Get("store_id"))
}

func TestJWTAuthRejectsTokenWithoutStoreIdentity(t *testing.T) {
	// A valid token with no store claim must not pass through with an empty
	// scope; that would let it act on every store.
	tok := signToken(t, testSecret, jwt.MapClaims{"customer_id": "cust_1"})
	rec, c := runJWT(t, "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, c.Get("store_id"))
}

func TestJWTAuthRejectsMissingOrForgedToken(t *testing.T) {
	rec, _ := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged := signToken(t, "other-secret", jwt.MapClaims{"store_id": "store_1"})
	rec, c := runJWT(t, "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, c.Get("store_id"))
}
