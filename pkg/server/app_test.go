package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xhttp "StockCast/pkg/http"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestRunContext_ServesUntilCancelled(t *testing.T) {
	port := freePort(t)
	srv, err := xhttp.NewServer(pingHandler{},
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(port),
		xhttp.WithMetrics("", nil, nil),
	)
	require.NoError(t, err)

	app := New(srv, nil, 2*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/ping", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(b) == "pong"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestRunContext_BindError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv, err := xhttp.NewServer(pingHandler{},
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(ln.Addr().(*net.TCPAddr).Port),
		xhttp.WithMetrics("", nil, nil),
	)
	require.NoError(t, err)

	err = New(srv, nil, time.Second).RunContext(context.Background())
	assert.Error(t, err)
}
