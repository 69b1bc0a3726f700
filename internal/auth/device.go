package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DeviceFlow drives the OAuth2 device-authorization grant against a
// Microsoft-style authority. The console shows the user code, the user signs
// in from a browser, and we poll the token endpoint until the grant resolves.
type DeviceFlow struct {
	clientID  string
	authority string
	scopes    []string
	httpc     *http.Client

	// pollFloor guards against a zero interval from the provider.
	pollFloor time.Duration
}

func NewDeviceFlow(clientID, authority string, scopes []string) *DeviceFlow {
	return &DeviceFlow{
		clientID:  clientID,
		authority: strings.TrimRight(authority, "/"),
		scopes:    scopes,
		httpc:     &http.Client{Timeout: 30 * time.Second},
		pollFloor: time.Second,
	}
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
	Message         string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	IDToken     string `json:"id_token"`
	Error       string `json:"error"`
	ErrorDesc   string `json:"error_description"`
}

// Authenticate performs the full device-code interaction. prompt is invoked
// once with the verification URI and user code before polling starts.
func (d *DeviceFlow) Authenticate(ctx context.Context, prompt func(verificationURI, userCode string)) (*Session, error) {
	code, err := d.requestDeviceCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("device code: %w", err)
	}

	if prompt != nil {
		prompt(code.VerificationURI, code.UserCode)
	}

	interval := time.Duration(code.Interval) * time.Second
	if interval < d.pollFloor {
		interval = 5 * time.Second
	}
	deadline := time.Now().Add(time.Duration(code.ExpiresIn) * time.Second)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("device code expired before sign-in completed")
		}

		tok, err := d.requestToken(ctx, code.DeviceCode)
		if err != nil {
			return nil, fmt.Errorf("token: %w", err)
		}
		switch tok.Error {
		case "":
			return &Session{
				Account:     accountFromIDToken(tok.IDToken),
				AccessToken: tok.AccessToken,
				ExpiresAt:   time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
				CreatedAt:   time.Now(),
			}, nil
		case "authorization_pending":
			continue
		case "slow_down":
			interval += 5 * time.Second
		default:
			return nil, fmt.Errorf("provider rejected sign-in: %s (%s)", tok.Error, tok.ErrorDesc)
		}
	}
}

func (d *DeviceFlow) requestDeviceCode(ctx context.Context) (*deviceCodeResponse, error) {
	form := url.Values{
		"client_id": {d.clientID},
		"scope":     {strings.Join(d.scopes, " ")},
	}
	var out deviceCodeResponse
	if err := d.postForm(ctx, d.authority+"/oauth2/v2.0/devicecode", form, &out); err != nil {
		return nil, err
	}
	if out.DeviceCode == "" {
		return nil, fmt.Errorf("provider returned no device code")
	}
	return &out, nil
}

func (d *DeviceFlow) requestToken(ctx context.Context, deviceCode string) (*tokenResponse, error) {
	form := url.Values{
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
		"client_id":   {d.clientID},
		"device_code": {deviceCode},
	}
	var out tokenResponse
	if err := d.postForm(ctx, d.authority+"/oauth2/v2.0/token", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// postForm decodes the body even on 4xx: the token endpoint reports polling
// states (authorization_pending, slow_down) as HTTP 400.
func (d *DeviceFlow) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

// accountFromIDToken pulls a display identity out of the ID token without
// validating it; validation is the backend's concern, we only label the
// session. Falls back to "corporate user" when the claim is absent.
func accountFromIDToken(idToken string) string {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return "corporate user"
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "corporate user"
	}
	var claims struct {
		PreferredUsername string `json:"preferred_username"`
		UPN               string `json:"upn"`
		Email             string `json:"email"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "corporate user"
	}
	for _, v := range []string{claims.PreferredUsername, claims.UPN, claims.Email} {
		if v != "" {
			return v
		}
	}
	return "corporate user"
}
