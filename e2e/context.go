package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// TestContext is the per-scenario state shared by every step package. It
// behaves like a browser: cookies live in a jar and are path scoped.
type TestContext struct {
	BaseURL string

	client       *http.Client
	lastStatus   int
	lastBody     []byte
	lastHeader   http.Header
	accessToken  string
	csrfToken    string
	staleRefresh string
	email        string
	password     string
}

// NewTestContext creates a fresh scenario context against baseURL.
func NewTestContext(baseURL string) *TestContext {
	jar, _ := cookiejar.New(nil)
	return &TestContext{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}
}

// Do sends a request with optional JSON body and extra headers and records
// the response.
func (tc *TestContext) Do(method, path string, body interface{}, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.Do(http.MethodPost, path, body, nil)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.Do(http.MethodGet, path, nil, headers)
}

// GetResponseField returns a top-level or dotted field of the last JSON body.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.lastBody, &data); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	var current interface{} = data
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %q not found", field)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not found", field)
		}
	}
	return current, nil
}

func (tc *TestContext) GetLastResponseStatus() int         { return tc.lastStatus }
func (tc *TestContext) GetLastResponseBody() []byte        { return tc.lastBody }
func (tc *TestContext) GetLastResponseHeader() http.Header { return tc.lastHeader }
func (tc *TestContext) GetAccessToken() string             { return tc.accessToken }
func (tc *TestContext) SetAccessToken(token string)        { tc.accessToken = token }
func (tc *TestContext) GetCSRFToken() string               { return tc.csrfToken }
func (tc *TestContext) SetCSRFToken(token string)          { tc.csrfToken = token }
func (tc *TestContext) GetCredentials() (string, string)   { return tc.email, tc.password }

func (tc *TestContext) SetCredentials(email, password string) {
	tc.email = email
	tc.password = password
}

// RefreshCookie returns the refresh cookie the jar would send to the refresh
// endpoint, or "".
func (tc *TestContext) RefreshCookie() string {
	target, err := url.Parse(tc.BaseURL + "/api/auth/refresh")
	if err != nil {
		return ""
	}
	for _, c := range tc.client.Jar.Cookies(target) {
		if c.Name == "refresh_token" {
			return c.Value
		}
	}
	return ""
}

func (tc *TestContext) RememberRefreshCookie()          { tc.staleRefresh = tc.RefreshCookie() }
func (tc *TestContext) RememberedRefreshCookie() string { return tc.staleRefresh }

// SendRefreshWithCookie posts to the refresh endpoint with an explicit cookie
// value, bypassing the jar.
func (tc *TestContext) SendRefreshWithCookie(value string) error {
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+"/api/auth/refresh", nil)
	if err != nil {
		return err
	}
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: value})
	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}
