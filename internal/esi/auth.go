package esi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/WiggidyW2/weve-market/internal/market"
)

const (
	defaultAuthURL = "https://login.eveonline.com/v2/oauth/token"
	authHost       = "login.eveonline.com"

	// tokenExpiryBuffer is subtracted from the declared access-token
	// lifetime so a token never gets used right as it expires mid-flight.
	tokenExpiryBuffer = 60 * time.Second
)

// tokenState is the access-token lifecycle for one refresh token: never
// fetched, fetched and still good, or fetched but past its buffered expiry.
type tokenState int

const (
	tokenAbsent tokenState = iota
	tokenValid
	tokenExpired
)

type cachedToken struct {
	mu          sync.Mutex
	accessToken string
	expiry      time.Time
}

func (t *cachedToken) state() tokenState {
	if t.accessToken == "" {
		return tokenAbsent
	}
	if time.Now().After(t.expiry) {
		return tokenExpired
	}
	return tokenValid
}

// authenticator holds one cachedToken per configured refresh token and
// refreshes access tokens against the EVE SSO token endpoint.
type authenticator struct {
	clientID     string
	clientSecret string
	basicAuth    string
	authURL      string
	http         *http.Client
	tokens       map[market.RefreshToken]*cachedToken
	mu           sync.Mutex // guards lazy creation of entries in tokens
}

// authURLOverride replaces the SSO token endpoint, for pointing at a test
// server. Empty means the real login.eveonline.com.
func newAuthenticator(clientID, clientSecret, authURLOverride string) *authenticator {
	basic := base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
	authURL := authURLOverride
	if authURL == "" {
		authURL = defaultAuthURL
	}
	return &authenticator{
		clientID:     clientID,
		clientSecret: clientSecret,
		basicAuth:    "Basic " + basic,
		authURL:      authURL,
		http:         &http.Client{Timeout: 15 * time.Second},
		tokens:       make(map[market.RefreshToken]*cachedToken),
	}
}

func (a *authenticator) entry(rt market.RefreshToken) *cachedToken {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.tokens[rt]
	if !ok {
		t = &cachedToken{}
		a.tokens[rt] = t
	}
	return t
}

// AccessToken returns a valid bearer token for rt, refreshing it against
// the SSO endpoint if absent or expired. The per-token mutex is held across
// the synchronous refresh call, so concurrent callers for the same refresh
// token collapse onto a single upstream refresh.
func (a *authenticator) AccessToken(ctx context.Context, rt market.RefreshToken) (string, error) {
	t := a.entry(rt)
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state() == tokenValid {
		return t.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {string(rt)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", a.basicAuth)
	if a.authURL == defaultAuthURL {
		req.Header.Set("Host", authHost)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh token: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}

	t.accessToken = parsed.AccessToken
	t.expiry = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - tokenExpiryBuffer)
	return t.accessToken, nil
}
