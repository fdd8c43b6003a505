package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brokerdeck/go-broker-client/trading"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewServer([]byte("test-signing-secret")).Routes())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeTokens(t *testing.T, resp *http.Response) tokenResponseBody {
	t.Helper()
	var tokens tokenResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokens))
	return tokens
}

func signup(t *testing.T, baseURL, email, password string) tokenResponseBody {
	t.Helper()
	resp := postJSON(t, baseURL+"/api/v1/auth/signup", credentialsBody{Email: email, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeTokens(t, resp)
}

func authedGet(t *testing.T, url, accessToken string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSignupLoginAndAuthedRequest(t *testing.T) {
	server := setupServer(t)

	signedUp := signup(t, server.URL, "u@x.com", "secret1")
	require.NotEmpty(t, signedUp.AccessToken)
	require.NotEmpty(t, signedUp.RefreshToken)
	require.Equal(t, int64(3600), signedUp.ExpiresIn)
	require.NotNil(t, signedUp.User)
	require.Equal(t, "u@x.com", signedUp.User.Email)

	loginResp := postJSON(t, server.URL+"/api/v1/auth/login", credentialsBody{Email: "u@x.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	loggedIn := decodeTokens(t, loginResp)

	holdingsResp := authedGet(t, server.URL+"/api/v1/holdings", loggedIn.AccessToken)
	require.Equal(t, http.StatusOK, holdingsResp.StatusCode)

	var holdings trading.HoldingsResponse
	require.NoError(t, json.NewDecoder(holdingsResp.Body).Decode(&holdings))
	require.NotEmpty(t, holdings.Holdings)
}

func TestSignupDuplicateEmail(t *testing.T) {
	server := setupServer(t)
	signup(t, server.URL, "u@x.com", "secret1")

	resp := postJSON(t, server.URL+"/api/v1/auth/signup", credentialsBody{Email: "u@x.com", Password: "another-secret"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	server := setupServer(t)
	signup(t, server.URL, "u@x.com", "secret1")

	resp := postJSON(t, server.URL+"/api/v1/auth/login", credentialsBody{Email: "u@x.com", Password: "wrong"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "invalid email or password", body["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := setupServer(t)

	for _, route := range []string{"/api/v1/holdings", "/api/v1/orderbook", "/api/v1/positions"} {
		resp := authedGet(t, server.URL+route, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, route)
	}

	resp := authedGet(t, server.URL+"/api/v1/holdings", "not-a-real-token")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshRotation(t *testing.T) {
	server := setupServer(t)
	tokens := signup(t, server.URL, "u@x.com", "secret1")

	refreshed := postJSON(t, server.URL+"/api/v1/auth/refresh", map[string]string{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, refreshed.StatusCode)
	rotated := decodeTokens(t, refreshed)
	require.NotEmpty(t, rotated.AccessToken)
	require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The old refresh token is single-use.
	replay := postJSON(t, server.URL+"/api/v1/auth/refresh", map[string]string{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, replay.StatusCode)

	// The rotated pair works.
	resp := authedGet(t, server.URL+"/api/v1/holdings", rotated.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRefreshWithUnknownToken(t *testing.T) {
	server := setupServer(t)

	resp := postJSON(t, server.URL+"/api/v1/auth/refresh", map[string]string{"refresh_token": "deadbeef"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPlaceOrder(t *testing.T) {
	server := setupServer(t)
	tokens := signup(t, server.URL, "u@x.com", "secret1")

	order := trading.OrderRequest{
		Symbol:        "RELIANCE",
		OrderType:     trading.OrderSideBuy,
		Quantity:      10,
		OrderCategory: trading.OrderCategoryMarket,
	}
	payload, err := json.Marshal(order)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/orders", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var placed trading.OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&placed))
	require.Equal(t, "RELIANCE", placed.Order.Symbol)
	require.Equal(t, trading.OrderStatusPending, placed.Order.Status)
	require.NotEmpty(t, placed.Order.ID)
}

func TestPlaceOrderValidation(t *testing.T) {
	server := setupServer(t)
	tokens := signup(t, server.URL, "u@x.com", "secret1")

	payload, err := json.Marshal(trading.OrderRequest{Symbol: "", OrderType: trading.OrderSideBuy})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/orders", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTokenServiceValidateAccess(t *testing.T) {
	service := NewTokenService([]byte("s1"))
	user := &User{ID: 1, Email: "u@x.com"}

	accessToken, _, _, err := service.IssueTokens(user)
	require.NoError(t, err)

	email, err := service.ValidateAccess(accessToken)
	require.NoError(t, err)
	require.Equal(t, "u@x.com", email)

	// A token signed with a different secret is rejected.
	other := NewTokenService([]byte("s2"))
	_, err = other.ValidateAccess(accessToken)
	require.Error(t, err)
}
