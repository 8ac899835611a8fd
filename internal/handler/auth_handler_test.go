package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmolab/gpd-api/internal/models"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type authServiceMock struct {
	result *models.LoginResponse
	err    error

	gotRequest models.LoginRequest
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.gotRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	service := &authServiceMock{result: &models.LoginResponse{
		AccessToken: "token-abc",
		ExpiresIn:   3600,
		User:        models.UserInfo{ID: "u1", Email: "ana@example.com"},
	}}
	handler := NewAuthHandler(service)

	body, _ := json.Marshal(models.LoginRequest{Email: "ana@example.com", Password: "segredo"})
	c, w := testContext(t, http.MethodPost, "/auth/login", body)
	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ana@example.com", service.gotRequest.Email)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "token-abc", envelope.Data.AccessToken)
}

func TestAuthHandlerLoginInvalidBody(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})

	c, w := testContext(t, http.MethodPost, "/auth/login", []byte("not json"))
	handler.Login(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	service := &authServiceMock{err: appErrors.ErrInvalidCredentials}
	handler := NewAuthHandler(service)

	body, _ := json.Marshal(models.LoginRequest{Email: "ana@example.com", Password: "errada"})
	c, w := testContext(t, http.MethodPost, "/auth/login", body)
	handler.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var envelope struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "INVALID_CREDENTIALS", envelope.Error.Code)
}
