package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
)

type staticProvider struct {
	cfg    configloader.Configuration
	loaded bool
}

func (p staticProvider) GetConfig() (configloader.Configuration, bool) {
	return p.cfg, p.loaded
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func okResponse(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("ok")),
		Header:     make(http.Header),
		Request:    req,
	}
}

func TestRewriteURL(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		target string
		want   string
	}{
		{"leading slash", "https://api.example.com", "/api/users", "https://api.example.com/api/users"},
		{"no leading slash", "https://api.example.com", "api/users", "https://api.example.com/api/users"},
		{"base trailing slash", "https://api.example.com/", "/api/users", "https://api.example.com/api/users"},
		{"both slashes doubled", "https://api.example.com//", "//api/users", "https://api.example.com/api/users"},
		{"absolute target", "https://api.example.com", "http://other.example.com/x", "http://other.example.com/x"},
		{"empty base", "", "/api/users", "/api/users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewriteURL(tt.base, tt.target))
		})
	}
}

func TestConfigTransport_Rewrites(t *testing.T) {
	sink := lifecycle.NewMemoryStore()
	var seen *http.Request
	transport := &configTransport{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			seen = req
			return okResponse(req), nil
		}),
		Config:    staticProvider{cfg: configloader.Configuration{APIURL: "https://api.example.com"}, loaded: true},
		Modifier:  requestIDModifier("X-Request-ID"),
		Milestone: lifecycle.NewEmitter(sink, MilestoneSource),
		Logger:    nopTestLogger{},
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/api/users", nil)
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotNil(t, seen)
	assert.Equal(t, "https://api.example.com/api/users", seen.URL.String())
	assert.Equal(t, "api.example.com", seen.Host)
	assert.NotEmpty(t, seen.Header.Get("X-Request-ID"))
	assert.Equal(t, "/api/users", req.URL.String(), "caller's request is not modified")

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, lifecycle.EventTypeInterceptorRequest, events[0].Type)
	assert.Equal(t, "https://api.example.com/api/users", events[0].Data["modifiedUrl"])
	assert.Equal(t, lifecycle.EventTypeInterceptorResponse, events[1].Type)
	assert.Equal(t, http.StatusOK, events[1].Data["status"])
}

func TestConfigTransport_ErrorPassesThrough(t *testing.T) {
	sink := lifecycle.NewMemoryStore()
	errBoom := errors.New("connection refused")
	transport := &configTransport{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errBoom
		}),
		Config:    staticProvider{cfg: configloader.Configuration{APIURL: "https://api.example.com"}, loaded: true},
		Milestone: lifecycle.NewEmitter(sink, MilestoneSource),
		Logger:    nopTestLogger{},
	}

	req, err := http.NewRequest(http.MethodGet, "/api/users", nil)
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	assert.Nil(t, resp)
	assert.Same(t, errBoom, err)

	idx := sink.IndexOf(lifecycle.EventTypeInterceptorError, MilestoneSource)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, lifecycle.EventStatusFailed, sink.Events()[idx].Status)
}

func TestConfigTransport_NotLoadedLeavesURL(t *testing.T) {
	var seen *http.Request
	transport := &configTransport{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			seen = req
			return okResponse(req), nil
		}),
		Config: staticProvider{},
		Logger: nopTestLogger{},
	}

	req, err := http.NewRequest(http.MethodGet, "http://localhost/x", nil)
	require.NoError(t, err)
	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost/x", seen.URL.String())
}

func TestModule_InterceptsRelativeRequests(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	t.Setenv("INITORDER_CONFIGLOADER_FETCH_DELAY", "1ms")
	t.Setenv("INITORDER_CONFIGLOADER_API_URL", server.URL)

	sink := lifecycle.NewMemoryStore()
	app := initorder.NewStdApplication(nil, nil)
	require.NoError(t, app.RegisterMilestoneObserver(sink))
	app.RegisterModule(NewHTTPClientModule())
	app.RegisterModule(configloader.NewModule())
	require.NoError(t, app.Init())

	var client *http.Client
	require.NoError(t, app.GetService(ServiceName, &client))
	assert.Equal(t, 5*time.Second, client.Timeout)

	resp, err := client.Get("/api/users")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "/api/users", gotPath)

	complete := sink.IndexOf(lifecycle.EventTypeInitializerComplete, configloader.MilestoneSource)
	constructed := sink.IndexOf(lifecycle.EventTypeInterceptorConstructed, MilestoneSource)
	require.GreaterOrEqual(t, complete, 0)
	require.GreaterOrEqual(t, constructed, 0)
	assert.Less(t, complete, constructed)
	assert.Equal(t, true, sink.Events()[constructed].Data["configVisible"])

	var svc ClientService
	require.NoError(t, app.GetService(ClientServiceName, &svc))
	assert.Equal(t, time.Second, svc.WithTimeout(time.Second).Timeout)
	assert.Same(t, client, svc.WithTimeout(0))
}

func TestModule_RequiresConfigLoader(t *testing.T) {
	assert.Equal(t, []string{configloader.ModuleName}, NewHTTPClientModule().Dependencies())
}

func TestConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Config{}).Validate(), ErrInvalidTimeout)
	assert.NoError(t, (&Config{RequestTimeout: time.Second}).Validate())
}

type nopTestLogger struct{}

func (nopTestLogger) Info(string, ...any)  {}
func (nopTestLogger) Error(string, ...any) {}
func (nopTestLogger) Warn(string, ...any)  {}
func (nopTestLogger) Debug(string, ...any) {}
