// Package callback runs a one-shot loopback HTTP listener for the OAuth
// redirect. The provider redirects the browser to localhost; the listener
// captures the full redirect URL so it can be handed to the backend exchange
// without the user pasting it. Pasting stays the fallback when the port is
// unavailable.
package callback

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// DefaultAddr matches the redirect URI registered with the provider.
const DefaultAddr = "127.0.0.1:8080"

const responsePage = `<!doctype html>
<html><body style="font-family: sans-serif; padding: 2em">
<h3>Authorization received</h3>
<p>You can close this window and return to poolctl.</p>
</body></html>`

type Listener struct {
	srv   *http.Server
	ln    net.Listener
	urlCh chan string
	once  sync.Once
}

// Listen binds the loopback address and starts serving. It fails fast when
// the port is taken (another flow, or an unrelated service).
func Listen(addr string) (*Listener, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind callback listener on %s: %w", addr, err)
	}
	l := &Listener{
		ln:    ln,
		urlCh: make(chan string, 1),
	}
	r := chi.NewRouter()
	r.Get("/*", l.handle)
	l.srv = &http.Server{Handler: r}
	go func() {
		_ = l.srv.Serve(ln)
	}()
	return l, nil
}

func (l *Listener) handle(w http.ResponseWriter, r *http.Request) {
	// Reconstruct the URL the provider redirected to; the backend only
	// needs the query string but expects the full URL.
	captured := "http://localhost:8080" + r.URL.RequestURI()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(responsePage))
	l.once.Do(func() {
		l.urlCh <- captured
	})
}

// Wait blocks until the provider redirect arrives or the context ends.
func (l *Listener) Wait(ctx context.Context) (string, error) {
	select {
	case u := <-l.urlCh:
		return u, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

func (l *Listener) Close() error {
	return l.srv.Close()
}
