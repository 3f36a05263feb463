package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
)

// MilestoneSource tags milestones recorded by the interceptor.
const MilestoneSource = "INTERCEPTOR"

// RewriteURL prefixes target with base when base is set and target is not
// already absolute (does not start with "http"). Exactly one slash separates
// the two parts, whatever slashes either side carried.
func RewriteURL(base, target string) string {
	if base == "" || strings.HasPrefix(target, "http") {
		return target
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(target, "/")
}

// configTransport rewrites relative request URLs against the loaded
// configuration and records each request and its outcome. It never changes
// the response or the error returned by the wrapped transport.
type configTransport struct {
	Transport http.RoundTripper
	Config    configloader.Provider
	Modifier  RequestModifierFunc
	Milestone *lifecycle.Emitter
	Logger    initorder.Logger
}

// RoundTrip implements the http.RoundTripper interface.
func (t *configTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)
	if t.Modifier != nil {
		out = t.Modifier(out)
	}

	original := req.URL.String()
	cfg, loaded := t.Config.GetConfig()

	rewritten := original
	if loaded {
		rewritten = RewriteURL(cfg.APIURL, original)
	}
	if rewritten != original {
		u, err := url.Parse(rewritten)
		if err != nil {
			return nil, fmt.Errorf("rewriting %q: %w", original, err)
		}
		out.URL = u
		out.Host = u.Host
	}

	t.Milestone.Emit(ctx, lifecycle.EventTypeInterceptorRequest, "Intercepting HTTP request",
		"method", req.Method,
		"url", original,
		"modifiedUrl", rewritten,
		"configLoaded", loaded)

	start := time.Now()
	resp, err := t.Transport.RoundTrip(out)
	duration := time.Since(start)

	if err != nil {
		t.Milestone.EmitStatus(ctx, lifecycle.EventTypeInterceptorError, lifecycle.EventStatusFailed,
			"Request failed", "url", rewritten, "durationMs", duration.Milliseconds(), "error", err.Error())
		t.Logger.Debug("Intercepted request failed", "url", rewritten, "error", err)
		return resp, err
	}

	t.Milestone.EmitStatus(ctx, lifecycle.EventTypeInterceptorResponse, lifecycle.EventStatusCompleted,
		"Response received", "url", rewritten, "status", resp.StatusCode, "durationMs", duration.Milliseconds())
	return resp, nil
}
