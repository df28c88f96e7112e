package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestWaitForRedirectCapturesQuery(t *testing.T) {
	port := freePort(t)
	redirectURI := fmt.Sprintf("http://127.0.0.1:%d/callback", port)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		url string
		err error
	}
	done := make(chan result, 1)
	go func() {
		u, err := WaitForRedirect(ctx, redirectURI)
		done <- result{u, err}
	}()

	// Give the listener a moment, then play the provider's redirect.
	var resp *http.Response
	var err error
	for i := 0; i < 50; i++ {
		resp, err = http.Get(redirectURI + "?code=abc&state=xyz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	resp.Body.Close()

	r := <-done
	require.NoError(t, r.err)
	assert.Contains(t, r.url, "code=abc")
	assert.Contains(t, r.url, "state=xyz")
}

func TestWaitForRedirectContextCancel(t *testing.T) {
	port := freePort(t)
	redirectURI := fmt.Sprintf("http://127.0.0.1:%d/callback", port)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WaitForRedirect(ctx, redirectURI)
	assert.ErrorIs(t, err, context.Canceled)
}
