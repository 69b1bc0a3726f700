package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func fakeIDToken(t *testing.T, claims map[string]string) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatal(err)
	}
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(`{"alg":"none"}`)) + "." + enc(payload) + "." + enc([]byte("sig"))
}

func TestAuthenticatePollsUntilGranted(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/v2.0/devicecode":
			_ = json.NewEncoder(w).Encode(deviceCodeResponse{
				DeviceCode:      "dev-1",
				UserCode:        "ABCD-1234",
				VerificationURI: "https://microsoft.com/devicelogin",
				ExpiresIn:       60,
				Interval:        1,
			})
		case "/oauth2/v2.0/token":
			if polls.Add(1) == 1 {
				// Polling states come back as HTTP 400 with an error field.
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(tokenResponse{Error: "authorization_pending"})
				return
			}
			_ = json.NewEncoder(w).Encode(tokenResponse{
				AccessToken: "tok",
				ExpiresIn:   3600,
				IDToken:     fakeIDToken(t, map[string]string{"preferred_username": "admin@smartfactory.example"}),
			})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	flow := NewDeviceFlow("client-id", srv.URL, []string{"openid"})

	var promptedURI, promptedCode string
	sess, err := flow.Authenticate(context.Background(), func(uri, code string) {
		promptedURI, promptedCode = uri, code
	})
	if err != nil {
		t.Fatal(err)
	}
	if promptedURI != "https://microsoft.com/devicelogin" || promptedCode != "ABCD-1234" {
		t.Fatalf("prompt = %q %q", promptedURI, promptedCode)
	}
	if sess.Account != "admin@smartfactory.example" || sess.AccessToken != "tok" {
		t.Fatalf("session = %+v", sess)
	}
	if got := polls.Load(); got < 2 {
		t.Fatalf("polls = %d", got)
	}
}

func TestAuthenticateSurfacesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/v2.0/devicecode":
			_ = json.NewEncoder(w).Encode(deviceCodeResponse{DeviceCode: "dev-1", ExpiresIn: 60, Interval: 1})
		case "/oauth2/v2.0/token":
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(tokenResponse{Error: "access_denied", ErrorDesc: "user declined"})
		}
	}))
	defer srv.Close()

	flow := NewDeviceFlow("client-id", srv.URL, nil)
	if _, err := flow.Authenticate(context.Background(), nil); err == nil {
		t.Fatal("want error")
	}
}

func TestAccountFromIDToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"malformed", "not-a-jwt", "corporate user"},
		{"empty claims", fakeIDTokenStatic(map[string]string{}), "corporate user"},
		{"upn fallback", fakeIDTokenStatic(map[string]string{"upn": "ops@corp"}), "ops@corp"},
		{"preferred first", fakeIDTokenStatic(map[string]string{"preferred_username": "a@corp", "email": "b@corp"}), "a@corp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := accountFromIDToken(tt.token); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func fakeIDTokenStatic(claims map[string]string) string {
	payload, _ := json.Marshal(claims)
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(`{}`)) + "." + enc(payload) + "." + enc([]byte("sig"))
}
