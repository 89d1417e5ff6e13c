// Package gateway is the single HTTP boundary to the tokenpool backend. It
// attaches the session credential to every call, surfaces the backend's
// human-readable error detail when one is available, and never retries or
// touches session state itself.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"

	"github.com/lkarlslund/tokenpool/pkg/session"
)

const maxErrorBody = 8192

// CredentialSource supplies the current session credential, empty when
// unauthenticated. *session.Store satisfies it.
type CredentialSource interface {
	Credential() string
}

// APIError is a backend-reported failure: a non-2xx status plus the detail
// message from the response body when the backend sent one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Detail)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, msg)
}

type Client struct {
	base  string
	creds CredentialSource
	// No client-side timeout: a slow submit keeps its control disabled
	// until the call resolves, and the OAuth wait has no deadline.
	client *http.Client
}

func NewClient(baseURL string, creds CredentialSource) *Client {
	return &Client{
		base:   strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		creds:  creds,
		client: &http.Client{},
	}
}

// BaseURL returns the server origin this client talks to.
func (c *Client) BaseURL() string {
	return c.base
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if c.creds != nil {
		if cred := strings.TrimSpace(c.creds.Credential()); cred != "" {
			req.Header.Set("Authorization", "Bearer "+cred)
		}
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Detail string `json:"detail"`
	}
	detail := ""
	if json.Unmarshal(b, &payload) == nil {
		detail = strings.TrimSpace(payload.Detail)
	}
	if detail == "" {
		detail = strings.TrimSpace(string(b))
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, method, path string, form neturl.Values, out any) error {
	req, err := c.newRequest(ctx, method, path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// LoginResult is the /api/auth/login response.
type LoginResult struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	User        session.Identity `json:"user"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	form := neturl.Values{}
	form.Set("username", username)
	form.Set("password", password)
	var out LoginResult
	if err := c.postForm(ctx, http.MethodPost, "/api/auth/login", form, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return nil, fmt.Errorf("login response missing access token")
	}
	return &out, nil
}

// Register creates an account and returns the issued session credential.
// The backend does not echo the identity here; fetch it with Me afterwards.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	form := neturl.Values{}
	form.Set("username", username)
	form.Set("password", password)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.postForm(ctx, http.MethodPost, "/api/auth/register", form, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return "", fmt.Errorf("register response missing access token")
	}
	return out.AccessToken, nil
}

func (c *Client) Me(ctx context.Context) (session.Identity, error) {
	var out session.Identity
	err := c.getJSON(ctx, "/api/auth/me", &out)
	return out, err
}

func (c *Client) ListTokens(ctx context.Context) ([]Token, error) {
	var out []Token
	if err := c.getJSON(ctx, "/api/auth/tokens", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UploadToken(ctx context.Context, token string, public bool) (*UploadResult, error) {
	form := neturl.Values{}
	form.Set("token", token)
	form.Set("is_public", strconv.FormatBool(public))
	var out UploadResult
	if err := c.postForm(ctx, http.MethodPost, "/api/auth/tokens", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetTokenPublic(ctx context.Context, id int64, public bool) error {
	form := neturl.Values{}
	form.Set("is_public", strconv.FormatBool(public))
	return c.postForm(ctx, http.MethodPatch, "/api/auth/tokens/"+strconv.FormatInt(id, 10), form, nil)
}

func (c *Client) DeleteToken(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/auth/tokens/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// AuthURL requests the provider authorization URL that starts an OAuth
// credential acquisition.
func (c *Client) AuthURL(ctx context.Context) (string, error) {
	var out struct {
		AuthURL string `json:"auth_url"`
		State   string `json:"state"`
	}
	if err := c.getJSON(ctx, "/api/oauth/auth-url", &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.AuthURL) == "" {
		return "", fmt.Errorf("auth-url response missing auth_url")
	}
	return out.AuthURL, nil
}

// SubmitCallback hands the pasted authorization callback URL to the backend
// for the server-side code exchange.
func (c *Client) SubmitCallback(ctx context.Context, callbackURL string, public bool) (*ExchangeResult, error) {
	payload := map[string]any{
		"callback_url": callbackURL,
		"is_public":    public,
	}
	var out ExchangeResult
	if err := c.postJSON(ctx, "/api/oauth/callback", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ManualToken(ctx context.Context, in ManualTokenInput) (*ExchangeResult, error) {
	var out ExchangeResult
	if err := c.postJSON(ctx, "/api/oauth/manual", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*PoolStats, error) {
	var out PoolStats
	if err := c.getJSON(ctx, "/api/public/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Announcement(ctx context.Context) (*Announcement, error) {
	var out Announcement
	if err := c.getJSON(ctx, "/api/public/announcement", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
