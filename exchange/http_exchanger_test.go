package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-credentials/core"
)

func TestHTTPExchanger_ExchangeAuthorizationCode(t *testing.T) {
	var captured map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		captured = map[string]string{
			"grant_type":   r.PostFormValue("grant_type"),
			"code":         r.PostFormValue("code"),
			"client_id":    r.PostFormValue("client_id"),
			"redirect_uri": r.PostFormValue("redirect_uri"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at_1","refresh_token":"rt_1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	now := time.Unix(1_700_000_000, 0).UTC()
	exchanger := NewHTTPExchanger(Config{Now: func() time.Time { return now }})

	grant, err := exchanger.ExchangeAuthorizationCode(context.Background(), core.ExchangeCodeRequest{
		TokenURI:     server.URL,
		ClientID:     "client_1",
		ClientSecret: "secret_1",
		RedirectURI:  "https://app.example.test/callback",
		Code:         "code_1",
	})
	if err != nil {
		t.Fatalf("exchange authorization code: %v", err)
	}
	if grant.AccessToken != "at_1" || grant.RefreshToken != "rt_1" {
		t.Fatalf("unexpected grant %#v", grant)
	}
	if grant.ExpiryTime == nil || !grant.ExpiryTime.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", grant.ExpiryTime)
	}
	if captured["grant_type"] != "authorization_code" || captured["code"] != "code_1" {
		t.Fatalf("unexpected form payload %#v", captured)
	}
	if captured["redirect_uri"] != "https://app.example.test/callback" {
		t.Fatalf("expected redirect uri in form payload, got %q", captured["redirect_uri"])
	}
}

func TestHTTPExchanger_ExchangeAssertion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostFormValue("grant_type"); got != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
			t.Errorf("unexpected grant type %q", got)
		}
		if got := r.PostFormValue("scope"); got != "scope.a scope.b" {
			t.Errorf("unexpected scope %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at_assert","expires_in":"900"}`))
	}))
	defer server.Close()

	exchanger := NewHTTPExchanger(Config{})
	grant, err := exchanger.ExchangeAssertion(context.Background(), core.ExchangeAssertionRequest{
		TokenURI:  server.URL,
		Assertion: "signed.jwt.assertion",
		Scopes:    []string{"scope.a", "scope.b"},
	})
	if err != nil {
		t.Fatalf("exchange assertion: %v", err)
	}
	if grant.AccessToken != "at_assert" {
		t.Fatalf("unexpected access token %q", grant.AccessToken)
	}
	if grant.ExpiryTime == nil {
		t.Fatalf("expected expiry from string expires_in")
	}
}

func TestHTTPExchanger_RefreshAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostFormValue("refresh_token"); got != "rt_1" {
			t.Errorf("unexpected refresh token %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at_2"}`))
	}))
	defer server.Close()

	exchanger := NewHTTPExchanger(Config{})
	grant, err := exchanger.RefreshAccessToken(context.Background(), core.RefreshTokenRequest{
		TokenURI:     server.URL,
		ClientID:     "client_1",
		ClientSecret: "secret_1",
		RefreshToken: "rt_1",
	})
	if err != nil {
		t.Fatalf("refresh access token: %v", err)
	}
	if grant.AccessToken != "at_2" {
		t.Fatalf("unexpected access token %q", grant.AccessToken)
	}
	if grant.ExpiryTime != nil {
		t.Fatalf("expected no expiry without expires_in, got %v", grant.ExpiryTime)
	}
}

func TestHTTPExchanger_RejectedGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Bad authorization code"}`))
	}))
	defer server.Close()

	exchanger := NewHTTPExchanger(Config{})
	_, err := exchanger.ExchangeAuthorizationCode(context.Background(), core.ExchangeCodeRequest{
		TokenURI:     server.URL,
		ClientID:     "client_1",
		ClientSecret: "secret_1",
		Code:         "expired_code",
	})
	if err == nil {
		t.Fatalf("expected rejection")
	}
	if !core.IsInvalidRequest(err) {
		t.Fatalf("expected invalid request category, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Fatalf("expected provider error code in message, got %q", err.Error())
	}
}

func TestHTTPExchanger_ValidatesInputs(t *testing.T) {
	exchanger := NewHTTPExchanger(Config{})

	if _, err := exchanger.ExchangeAuthorizationCode(context.Background(), core.ExchangeCodeRequest{
		TokenURI: "https://oauth2.googleapis.com/token",
	}); !core.IsInvalidRequest(err) {
		t.Fatalf("expected missing code rejection, got %v", err)
	}
	if _, err := exchanger.RefreshAccessToken(context.Background(), core.RefreshTokenRequest{
		TokenURI: "https://oauth2.googleapis.com/token",
	}); !core.IsInvalidRequest(err) {
		t.Fatalf("expected missing refresh token rejection, got %v", err)
	}
	if _, err := exchanger.ExchangeAssertion(context.Background(), core.ExchangeAssertionRequest{
		Assertion: "signed.jwt.assertion",
	}); !core.IsInvalidRequest(err) {
		t.Fatalf("expected missing token uri rejection, got %v", err)
	}
}
