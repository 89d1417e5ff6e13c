// Package dashboard is the credential ingestion and synchronization core: the
// three acquisition flows, the reconcile-after-write reload, and the derived
// display state for the user's tokens and the shared pool.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	log "github.com/charmbracelet/log"

	"github.com/lkarlslund/tokenpool/pkg/gateway"
	"github.com/lkarlslund/tokenpool/pkg/session"
)

// Mode is the single open-modal state. Modeling it as one enum makes the
// at-most-one-open-flow invariant structural instead of conventional.
type Mode int

const (
	ModeClosed Mode = iota
	ModeUpload
	ModeOAuthWaiting
	ModeManual
)

func (m Mode) String() string {
	switch m {
	case ModeClosed:
		return "closed"
	case ModeUpload:
		return "upload"
	case ModeOAuthWaiting:
		return "oauth-waiting"
	case ModeManual:
		return "manual-entry"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ErrNotReady reports a submit attempted while a local precondition is
// unmet. It never reaches the network; the submit control is simply
// considered disabled.
var ErrNotReady = errors.New("required fields are empty")

type MessageKind int

const (
	MessageSuccess MessageKind = iota
	MessageError
)

type Message struct {
	Kind MessageKind
	Text string
}

// Confirmer gates destructive actions behind an interactive confirmation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// UploadDraft is the direct-paste flow draft. The token is submitted exactly
// as pasted.
type UploadDraft struct {
	Token      string
	Public     bool
	submitting bool
}

// OAuthDraft is the authorization-code flow draft. AuthURL is set once the
// backend has issued it; the user may re-open it at will while waiting.
type OAuthDraft struct {
	AuthURL     string
	CallbackURL string
	Public      bool
	submitting  bool
}

// ManualDraft is the hand-entered token pair draft. ExpiresIn is kept as the
// raw field value; anything that is not a positive integer falls back to
// 3600 seconds at submit time.
type ManualDraft struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    string
	submitting   bool
	Public       bool
}

const defaultExpiresIn = 3600

// Model owns the dashboard state: the authoritative copies of the token
// list, pool stats and identity (fully replaced on every reload), plus the
// transient acquisition drafts. It is driven by a single caller at a time.
type Model struct {
	gw       *gateway.Client
	sessions *session.Store
	confirm  Confirmer

	mode    Mode
	upload  UploadDraft
	oauth   OAuthDraft
	manual  ManualDraft
	message *Message

	tokens []gateway.Token
	stats  *gateway.PoolStats
	user   session.Identity
}

func NewModel(gw *gateway.Client, sessions *session.Store, confirm Confirmer) *Model {
	m := &Model{gw: gw, sessions: sessions, confirm: confirm}
	if id, ok := sessions.Identity(); ok {
		m.user = id
	}
	return m
}

func (m *Model) Mode() Mode                { return m.mode }
func (m *Model) Tokens() []gateway.Token   { return m.tokens }
func (m *Model) Stats() *gateway.PoolStats { return m.stats }
func (m *Model) User() session.Identity    { return m.user }
func (m *Model) Message() *Message         { return m.message }
func (m *Model) Upload() UploadDraft       { return m.upload }
func (m *Model) OAuth() OAuthDraft         { return m.oauth }
func (m *Model) Manual() ManualDraft       { return m.manual }

func (m *Model) ClearMessage() { m.message = nil }

func (m *Model) setSuccess(text string) { m.message = &Message{Kind: MessageSuccess, Text: text} }
func (m *Model) setError(text string)   { m.message = &Message{Kind: MessageError, Text: text} }

// errorText prefers the backend's own message and falls back to a generic
// one for transport-level failures.
func errorText(err error, generic string) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Detail) != "" {
		return apiErr.Detail
	}
	return generic
}

// OpenUpload opens the direct-paste modal. Any other open flow is replaced;
// its draft is discarded.
func (m *Model) OpenUpload() {
	m.discardDrafts()
	m.mode = ModeUpload
	m.upload = UploadDraft{Public: true}
}

// OpenManual opens the manual token-pair modal.
func (m *Model) OpenManual() {
	m.discardDrafts()
	m.mode = ModeManual
	m.manual = ManualDraft{Public: true, ExpiresIn: strconv.Itoa(defaultExpiresIn)}
}

// Cancel closes the open flow and discards its draft.
func (m *Model) Cancel() {
	m.discardDrafts()
	m.mode = ModeClosed
}

func (m *Model) discardDrafts() {
	m.upload = UploadDraft{}
	m.oauth = OAuthDraft{}
	m.manual = ManualDraft{}
}

func (m *Model) SetUploadToken(token string) { m.upload.Token = token }
func (m *Model) SetUploadPublic(public bool) { m.upload.Public = public }

func (m *Model) SetCallbackURL(url string)  { m.oauth.CallbackURL = url }
func (m *Model) SetOAuthPublic(public bool) { m.oauth.Public = public }

func (m *Model) SetManualAccessToken(v string)  { m.manual.AccessToken = v }
func (m *Model) SetManualRefreshToken(v string) { m.manual.RefreshToken = v }
func (m *Model) SetManualExpiresIn(v string)    { m.manual.ExpiresIn = v }
func (m *Model) SetManualPublic(public bool)    { m.manual.Public = public }

// CanSubmitUpload reports whether the direct-upload precondition (non-empty
// token) holds and no submit is in flight.
func (m *Model) CanSubmitUpload() bool {
	return strings.TrimSpace(m.upload.Token) != "" && !m.upload.submitting
}

func (m *Model) CanSubmitCallback() bool {
	return strings.TrimSpace(m.oauth.CallbackURL) != "" && !m.oauth.submitting
}

func (m *Model) CanSubmitManual() bool {
	return strings.TrimSpace(m.manual.AccessToken) != "" &&
		strings.TrimSpace(m.manual.RefreshToken) != "" &&
		!m.manual.submitting
}

// SubmitUpload submits the pasted token. On success the modal closes, the
// draft is cleared and exactly one reload runs; on failure the draft and the
// modal survive so the user can correct and resubmit.
func (m *Model) SubmitUpload(ctx context.Context) error {
	if m.mode != ModeUpload {
		return fmt.Errorf("upload flow is not open")
	}
	if !m.CanSubmitUpload() {
		return ErrNotReady
	}
	m.upload.submitting = true
	res, err := m.gw.UploadToken(ctx, m.upload.Token, m.upload.Public)
	m.upload.submitting = false
	if err != nil {
		m.setError(errorText(err, "token upload failed"))
		return err
	}
	m.setSuccess("Token uploaded. Supports: " + capabilityList(res.SupportsClaude, res.SupportsGemini))
	m.upload = UploadDraft{}
	m.mode = ModeClosed
	_ = m.Reload(ctx)
	return nil
}

// StartOAuth requests the authorization URL and, on success, enters the
// waiting-for-callback state. If the request fails the flow never enters the
// waiting state and the error is reported immediately.
func (m *Model) StartOAuth(ctx context.Context) (string, error) {
	authURL, err := m.gw.AuthURL(ctx)
	if err != nil {
		m.setError(errorText(err, "could not start the authorization flow"))
		return "", err
	}
	m.discardDrafts()
	m.mode = ModeOAuthWaiting
	m.oauth = OAuthDraft{AuthURL: authURL, Public: true}
	return authURL, nil
}

// SubmitCallback submits the pasted callback URL for the server-side code
// exchange.
func (m *Model) SubmitCallback(ctx context.Context) error {
	if m.mode != ModeOAuthWaiting {
		return fmt.Errorf("authorization flow is not waiting for a callback")
	}
	if !m.CanSubmitCallback() {
		return ErrNotReady
	}
	m.oauth.submitting = true
	res, err := m.gw.SubmitCallback(ctx, m.oauth.CallbackURL, m.oauth.Public)
	m.oauth.submitting = false
	if err != nil {
		m.setError(errorText(err, "callback exchange failed"))
		return err
	}
	text := "Credential acquired."
	if strings.TrimSpace(res.Email) != "" {
		text = "Credential acquired for " + res.Email + "."
	}
	m.setSuccess(text)
	m.oauth = OAuthDraft{}
	m.mode = ModeClosed
	_ = m.Reload(ctx)
	return nil
}

// SubmitManual registers a hand-entered access/refresh token pair.
func (m *Model) SubmitManual(ctx context.Context) error {
	if m.mode != ModeManual {
		return fmt.Errorf("manual entry flow is not open")
	}
	if !m.CanSubmitManual() {
		return ErrNotReady
	}
	in := gateway.ManualTokenInput{
		AccessToken:  m.manual.AccessToken,
		RefreshToken: m.manual.RefreshToken,
		ExpiresIn:    parseExpiresIn(m.manual.ExpiresIn),
		IsPublic:     m.manual.Public,
	}
	m.manual.submitting = true
	res, err := m.gw.ManualToken(ctx, in)
	m.manual.submitting = false
	if err != nil {
		m.setError(errorText(err, "manual token registration failed"))
		return err
	}
	text := "Token added."
	if strings.TrimSpace(res.Email) != "" {
		text = "Token added for " + res.Email + "."
	}
	m.setSuccess(text)
	m.manual = ManualDraft{}
	m.mode = ModeClosed
	_ = m.Reload(ctx)
	return nil
}

func parseExpiresIn(raw string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return defaultExpiresIn
	}
	return v
}

func capabilityList(claude, gemini bool) string {
	var caps []string
	if claude {
		caps = append(caps, "Claude")
	}
	if gemini {
		caps = append(caps, "Gemini")
	}
	if len(caps) == 0 {
		return "none"
	}
	return strings.Join(caps, ", ")
}

// Reload fetches the token list, pool stats and current identity
// concurrently and replaces local state only once all three have succeeded.
// A failed reload leaves the previous (stale but consistent) state visible;
// the failure is logged and also returned for callers that want it.
func (m *Model) Reload(ctx context.Context) error {
	var (
		tokens []gateway.Token
		stats  *gateway.PoolStats
		ident  session.Identity

		tokensErr, statsErr, identErr error
	)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		tokens, tokensErr = m.gw.ListTokens(ctx)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = m.gw.Stats(ctx)
	}()
	go func() {
		defer wg.Done()
		ident, identErr = m.gw.Me(ctx)
	}()
	wg.Wait()

	if err := errors.Join(tokensErr, statsErr, identErr); err != nil {
		log.Warn("dashboard reload failed, keeping previous state", "err", err)
		return err
	}
	m.tokens = tokens
	m.stats = stats
	m.user = ident
	if err := m.sessions.UpdateIdentity(ident); err != nil {
		log.Warn("could not re-persist refreshed identity", "err", err)
	}
	return nil
}

// TogglePublic submits the negation of the token's current public flag and
// reloads on success. The backend error is returned for blocking display;
// nothing is retried.
func (m *Model) TogglePublic(ctx context.Context, id int64) error {
	tok, ok := m.token(id)
	if !ok {
		return fmt.Errorf("unknown token #%d", id)
	}
	if err := m.gw.SetTokenPublic(ctx, id, !tok.IsPublic); err != nil {
		return fmt.Errorf("toggle public flag: %s", errorText(err, "operation failed"))
	}
	_ = m.Reload(ctx)
	return nil
}

// Delete removes a token after interactive confirmation. Without
// confirmation no request is issued.
func (m *Model) Delete(ctx context.Context, id int64) error {
	if _, ok := m.token(id); !ok {
		return fmt.Errorf("unknown token #%d", id)
	}
	if m.confirm == nil || !m.confirm.Confirm(fmt.Sprintf("Delete token #%d?", id)) {
		return nil
	}
	if err := m.gw.DeleteToken(ctx, id); err != nil {
		return fmt.Errorf("delete token: %s", errorText(err, "delete failed"))
	}
	_ = m.Reload(ctx)
	return nil
}

func (m *Model) token(id int64) (gateway.Token, bool) {
	for _, t := range m.tokens {
		if t.ID == id {
			return t, true
		}
	}
	return gateway.Token{}, false
}
