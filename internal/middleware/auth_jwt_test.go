package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	OwnerID string `json:"owner_id"`
}

// =====================
// helper
// =====================

func mustMakeJWT(t *testing.T, secret string, sub interface{}, exp time.Time, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	}

	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func newProtectedEcho() *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		id, _ := middleware.OwnerID(c)
		return c.JSON(http.StatusOK, mwOKResponse{OwnerID: id})
	}, middleware.AuthJWT(testSecret))
	return e
}

func runRequest(t *testing.T, e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func assertUnauthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&body)
	assert.Equal(t, "unauthorized", body.Error)
}

// =====================
// AuthJWT
// =====================

// Authorizationなし => 401
func TestAuthJWT_Unauthorized_NoHeader(t *testing.T) {
	assertUnauthorized(t, runRequest(t, newProtectedEcho(), ""))
}

// Bearer形式じゃない => 401
func TestAuthJWT_Unauthorized_BadScheme(t *testing.T) {
	assertUnauthorized(t, runRequest(t, newProtectedEcho(), "Token abc.def.ghi"))
}

// 署名違い => 401
func TestAuthJWT_Unauthorized_BadSignature(t *testing.T) {
	raw := mustMakeJWT(t, "wrong-secret", "user1", time.Now().Add(time.Hour), jwt.SigningMethodHS256)
	assertUnauthorized(t, runRequest(t, newProtectedEcho(), "Bearer "+raw))
}

// アルゴリズム違い（HS512）=> 401
func TestAuthJWT_Unauthorized_WrongAlg(t *testing.T) {
	raw := mustMakeJWT(t, testSecret, "user1", time.Now().Add(time.Hour), jwt.SigningMethodHS512)
	assertUnauthorized(t, runRequest(t, newProtectedEcho(), "Bearer "+raw))
}

// 期限切れ => 401
func TestAuthJWT_Unauthorized_Expired(t *testing.T) {
	raw := mustMakeJWT(t, testSecret, "user1", time.Now().Add(-time.Minute), jwt.SigningMethodHS256)
	assertUnauthorized(t, runRequest(t, newProtectedEcho(), "Bearer "+raw))
}

// subが空 => 401
func TestAuthJWT_Unauthorized_EmptySub(t *testing.T) {
	raw := mustMakeJWT(t, testSecret, "", time.Now().Add(time.Hour), jwt.SigningMethodHS256)
	assertUnauthorized(t, runRequest(t, newProtectedEcho(), "Bearer "+raw))
}

// 正常：ctxに owner_id が入る
func TestAuthJWT_Success_SetsOwnerID(t *testing.T) {
	raw := mustMakeJWT(t, testSecret, "64b7f0c2a1", time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := runRequest(t, newProtectedEcho(), "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&body)
	assert.Equal(t, "64b7f0c2a1", body.OwnerID)
}

// 数値の sub も文字列にして受ける
func TestAuthJWT_Success_NumericSub(t *testing.T) {
	raw := mustMakeJWT(t, testSecret, 123, time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := runRequest(t, newProtectedEcho(), "bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&body)
	assert.Equal(t, "123", body.OwnerID)
}
