package httpserver

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/modules/chimux"
)

func TestHTTPServer_ServesChiHandler(t *testing.T) {
	t.Setenv("INITORDER_HTTPSERVER_PORT", "0")

	app := initorder.NewStdApplication(nil, nil)
	server := NewHTTPServerModule()
	app.RegisterModule(chimux.NewChiMuxModule())
	app.RegisterModule(server)
	require.NoError(t, app.Init())

	var r chi.Router
	require.NoError(t, app.GetService(chimux.RouterServiceName, &r))
	r.Get("/hello", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hi"))
	})

	_, err := server.Addr()
	assert.ErrorIs(t, err, ErrServerNotStarted)

	require.NoError(t, app.Start())
	addr, err := server.Addr()
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/hello")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "hi", string(body))

	require.NoError(t, app.Stop())
	_, err = http.Get("http://" + addr + "/hello")
	assert.Error(t, err)
}

func TestHTTPServerConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, (&HTTPServerConfig{Port: 70000}).Validate(), ErrInvalidPort)
	assert.NoError(t, (&HTTPServerConfig{Port: 0}).Validate())
}

func TestHTTPServer_StartWithoutHandler(t *testing.T) {
	assert.ErrorIs(t, NewHTTPServerModule().Start(context.Background()), ErrNoHandler)
}
