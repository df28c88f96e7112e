package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"
)

// callbackTimeout bounds how long the local server waits for the browser.
const callbackTimeout = 5 * time.Minute

// GenerateState returns a random CSRF token for the authorization flow.
func GenerateState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// WaitForRedirect runs a one-shot HTTP server on the redirect URI's port
// and blocks until the provider redirects the browser back, returning the
// full redirect URL as hit. The state check happens later in the session;
// here we only capture the request.
func WaitForRedirect(ctx context.Context, redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("parse redirect uri: %w", err)
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", u.Host, err)
	}

	resultCh := make(chan string, 1)
	mux := http.NewServeMux()
	path := u.Path
	if path == "" {
		path = "/"
	}
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><p>Authorization received. You can close this tab.</p></body></html>")
		select {
		case resultCh <- redirectURI + "?" + r.URL.RawQuery:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer srv.Close()

	timer := time.NewTimer(callbackTimeout)
	defer timer.Stop()

	select {
	case redirect := <-resultCh:
		return redirect, nil
	case <-timer.C:
		return "", fmt.Errorf("timed out waiting for authorization after %s", callbackTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// OpenBrowser opens the URL in the default browser. Failure is not fatal;
// callers print the URL so the user can open it by hand.
func OpenBrowser(rawURL string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	default:
		return exec.Command("xdg-open", rawURL).Start()
	}
}
