package callback

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestCapturesFirstRedirect(t *testing.T) {
	l, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	resp, err := http.Get("http://" + l.Addr() + "/?code=4%2Fabc&state=xyz")
	if err != nil {
		t.Fatalf("redirect request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "Authorization received") {
		t.Fatalf("unexpected response page: %s", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := l.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !strings.HasPrefix(got, "http://localhost:8080/?") ||
		!strings.Contains(got, "code=4%2Fabc") || !strings.Contains(got, "state=xyz") {
		t.Fatalf("captured url = %q", got)
	}

	// A second hit must not block the handler or overwrite the capture.
	if _, err := http.Get("http://" + l.Addr() + "/?code=other"); err != nil {
		t.Fatalf("second redirect: %v", err)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := l.Wait(ctx); err == nil {
		t.Fatal("wait returned without a redirect")
	}
}

func TestBusyPortFailsFast(t *testing.T) {
	l, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	if _, err := Listen(l.Addr()); err == nil {
		t.Fatal("second listener bound an occupied port")
	}
}
