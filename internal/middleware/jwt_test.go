package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pmolab/gpd-api/internal/models"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
	err    error

	gotToken string
}

func (s *validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func jwtTestRouter(stub *validatorStub) (*gin.Engine, *bool) {
	gin.SetMode(gin.TestMode)
	reached := false
	r := gin.New()
	r.GET("/protected", JWT(stub), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	return r, &reached
}

func TestJWTSetsClaims(t *testing.T) {
	stub := &validatorStub{claims: &models.JWTClaims{UserID: "u1"}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got *models.JWTClaims
	r.GET("/protected", JWT(stub), func(c *gin.Context) {
		value, _ := c.Get(ContextUserKey)
		got, _ = value.(*models.JWTClaims)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "abc.def.ghi", stub.gotToken)
	require.NotNil(t, got)
	require.Equal(t, "u1", got.UserID)
}

func TestJWTMissingHeader(t *testing.T) {
	r, reached := jwtTestRouter(&validatorStub{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, *reached)
}

func TestJWTMalformedHeader(t *testing.T) {
	r, reached := jwtTestRouter(&validatorStub{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, *reached)
}

func TestJWTInvalidToken(t *testing.T) {
	r, reached := jwtTestRouter(&validatorStub{err: appErrors.ErrUnauthorized})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, *reached)
}
