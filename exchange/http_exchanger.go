// Package exchange implements the token exchanger contract over plain HTTP
// form posts, the wire shape every OAuth2 token endpoint shares.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-credentials/core"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 1 << 20

	grantTypeAuthorizationCode = "authorization_code"
	grantTypeJWTBearer         = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	grantTypeRefreshToken      = "refresh_token"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	RequestTimeout time.Duration
	HTTPClient     HTTPDoer
	Now            func() time.Time
}

// HTTPExchanger posts form-encoded grant requests to the token endpoints the
// static provider configs name. It holds no per-provider state; client
// material arrives with each request.
type HTTPExchanger struct {
	config     Config
	httpClient HTTPDoer
}

func NewHTTPExchanger(cfg Config) *HTTPExchanger {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPExchanger{
		config: Config{
			RequestTimeout: timeout,
			Now:            now,
		},
		httpClient: httpClient,
	}
}

func (e *HTTPExchanger) ExchangeAuthorizationCode(ctx context.Context, req core.ExchangeCodeRequest) (core.TokenGrant, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return core.TokenGrant{}, core.NewInvalidRequestError("exchange: authorization code is required")
	}
	clientID := strings.TrimSpace(req.ClientID)
	clientSecret := strings.TrimSpace(req.ClientSecret)
	if clientID == "" || clientSecret == "" {
		return core.TokenGrant{}, core.NewInvalidRequestError("exchange: client id and client secret are required")
	}

	values := url.Values{}
	values.Set("grant_type", grantTypeAuthorizationCode)
	values.Set("code", code)
	values.Set("client_id", clientID)
	values.Set("client_secret", clientSecret)
	if redirectURI := strings.TrimSpace(req.RedirectURI); redirectURI != "" {
		values.Set("redirect_uri", redirectURI)
	}
	if verifier := strings.TrimSpace(req.CodeVerifier); verifier != "" {
		values.Set("code_verifier", verifier)
	}
	return e.postGrant(ctx, req.TokenURI, values)
}

func (e *HTTPExchanger) ExchangeAssertion(ctx context.Context, req core.ExchangeAssertionRequest) (core.TokenGrant, error) {
	assertion := strings.TrimSpace(req.Assertion)
	if assertion == "" {
		return core.TokenGrant{}, core.NewInvalidRequestError("exchange: assertion is required")
	}

	values := url.Values{}
	values.Set("grant_type", grantTypeJWTBearer)
	values.Set("assertion", assertion)
	if len(req.Scopes) > 0 {
		values.Set("scope", strings.Join(req.Scopes, " "))
	}
	return e.postGrant(ctx, req.TokenURI, values)
}

func (e *HTTPExchanger) RefreshAccessToken(ctx context.Context, req core.RefreshTokenRequest) (core.TokenGrant, error) {
	refreshToken := strings.TrimSpace(req.RefreshToken)
	if refreshToken == "" {
		return core.TokenGrant{}, core.NewInvalidRequestError("exchange: refresh token is required")
	}
	clientID := strings.TrimSpace(req.ClientID)
	clientSecret := strings.TrimSpace(req.ClientSecret)
	if clientID == "" || clientSecret == "" {
		return core.TokenGrant{}, core.NewInvalidRequestError("exchange: client id and client secret are required")
	}

	values := url.Values{}
	values.Set("grant_type", grantTypeRefreshToken)
	values.Set("refresh_token", refreshToken)
	values.Set("client_id", clientID)
	values.Set("client_secret", clientSecret)
	return e.postGrant(ctx, req.TokenURI, values)
}

func (e *HTTPExchanger) postGrant(ctx context.Context, tokenURI string, values url.Values) (core.TokenGrant, error) {
	if e == nil || e.httpClient == nil {
		return core.TokenGrant{}, fmt.Errorf("exchange: http client is not configured")
	}
	tokenURI = strings.TrimSpace(tokenURI)
	if tokenURI == "" {
		return core.TokenGrant{}, core.NewInvalidRequestError("exchange: token uri is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	requestCtx := ctx
	cancel := func() {}
	if e.config.RequestTimeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, e.config.RequestTimeout)
	}
	defer cancel()

	httpReq, err := http.NewRequestWithContext(
		requestCtx,
		http.MethodPost,
		tokenURI,
		strings.NewReader(values.Encode()),
	)
	if err != nil {
		return core.TokenGrant{}, fmt.Errorf("exchange: build token request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	response, err := e.httpClient.Do(httpReq)
	if err != nil {
		return core.TokenGrant{}, core.NewUnknownError("exchange: token request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes+1))
	if err != nil {
		return core.TokenGrant{}, core.NewUnknownError("exchange: read token response", err)
	}
	if int64(len(body)) > maxResponseBodyBytes {
		return core.TokenGrant{}, fmt.Errorf("exchange: token response exceeds %d bytes", maxResponseBodyBytes)
	}

	payload := map[string]any{}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return core.TokenGrant{}, core.NewUnknownError(
				fmt.Sprintf("exchange: decode token response (status %d)", response.StatusCode), err)
		}
	}

	errorCode := strings.TrimSpace(readString(payload["error"]))
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices || errorCode != "" {
		description := strings.TrimSpace(readString(payload["error_description"]))
		if description == "" {
			description = "token endpoint rejected the grant"
		}
		if errorCode != "" {
			description = fmt.Sprintf("%s (%s)", description, errorCode)
		}
		return core.TokenGrant{}, core.NewInvalidRequestError(
			fmt.Sprintf("exchange: %s (status %d)", description, response.StatusCode))
	}

	accessToken := strings.TrimSpace(readString(payload["access_token"]))
	if accessToken == "" {
		return core.TokenGrant{}, core.NewUnknownError("exchange: token response missing access token", nil)
	}

	grant := core.TokenGrant{
		AccessToken:  accessToken,
		RefreshToken: strings.TrimSpace(readString(payload["refresh_token"])),
		Sub:          strings.TrimSpace(readString(payload["sub"])),
	}
	if expiresIn := readInt64(payload["expires_in"]); expiresIn > 0 {
		expiry := e.config.Now().UTC().Add(time.Duration(expiresIn) * time.Second)
		grant.ExpiryTime = &expiry
	}
	return grant, nil
}

func readString(value any) string {
	typed, _ := value.(string)
	return typed
}

func readInt64(value any) int64 {
	switch typed := value.(type) {
	case int:
		return int64(typed)
	case int64:
		return typed
	case float64:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed
		}
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err == nil {
			return parsed
		}
	}
	return 0
}

var _ core.TokenExchanger = (*HTTPExchanger)(nil)
