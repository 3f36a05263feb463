package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/feeders"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// Static errors for startup order BDD tests
var (
	errAppNotBooted          = errors.New("application was not booted")
	errMilestoneMissing      = errors.New("milestone not recorded")
	errMilestoneOutOfOrder   = errors.New("milestone recorded out of order")
	errUnexpectedPhase       = errors.New("unexpected phase")
	errUnexpectedCount       = errors.New("unexpected count")
	errUnexpectedRoute       = errors.New("unexpected current route")
	errUnexpectedState       = errors.New("unexpected state")
	errConditionNotMet       = errors.New("condition not met before timeout")
	errRewriteNotRecorded    = errors.New("no matching interceptor request")
	errUpstreamNotConfigured = errors.New("upstream API not configured")
)

const eventuallyTimeout = 3 * time.Second

// StartupOrderBDDContext holds the state of one scenario.
type StartupOrderBDDContext struct {
	upstream   *httptest.Server
	upstreamMu sync.Mutex
	received   []string

	configDir  string
	fetchDelay string

	app     *App
	bootErr error
}

func (c *StartupOrderBDDContext) reset() {
	c.cleanup()
	c.received = nil
	c.fetchDelay = "10ms"
	c.app = nil
	c.bootErr = nil
}

func (c *StartupOrderBDDContext) cleanup() {
	if c.app != nil && c.bootErr == nil {
		_ = c.app.Shutdown()
	}
	if c.upstream != nil {
		c.upstream.Close()
		c.upstream = nil
	}
	if c.configDir != "" {
		_ = os.RemoveAll(c.configDir)
		c.configDir = ""
	}
}

func (c *StartupOrderBDDContext) anUpstreamAPIThatAnswersEveryRequest() error {
	c.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.upstreamMu.Lock()
		c.received = append(c.received, r.URL.Path)
		c.upstreamMu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	return nil
}

func (c *StartupOrderBDDContext) theConfigurationFetchTakes(delay string) error {
	if _, err := time.ParseDuration(delay); err != nil {
		return err
	}
	c.fetchDelay = delay
	return nil
}

func (c *StartupOrderBDDContext) writeConfig() (string, error) {
	if c.upstream == nil {
		return "", errUpstreamNotConfigured
	}
	dir, err := os.MkdirTemp("", "initorder-bdd-*")
	if err != nil {
		return "", err
	}
	c.configDir = dir

	content := fmt.Sprintf(`configloader:
  apiUrl: %s
  environment: test
  fetchDelay: %s
effects:
  load_data_delay: 20ms
`, c.upstream.URL, c.fetchDelay)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func (c *StartupOrderBDDContext) theApplicationBoots() error {
	path, err := c.writeConfig()
	if err != nil {
		return err
	}

	c.app, err = New(Options{
		Logger:  nopTestLogger{},
		Feeders: []initorder.Feeder{feeders.NewYamlFeeder(path)},
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.bootErr = c.app.Boot(ctx)
	return c.bootErr
}

func (c *StartupOrderBDDContext) booted() error {
	if c.app == nil || c.bootErr != nil {
		return errAppNotBooted
	}
	return nil
}

func (c *StartupOrderBDDContext) theInitializerCompletesBeforeTheFirstMilestone(eventType string) error {
	if err := c.booted(); err != nil {
		return err
	}
	history := c.app.History()
	done := history.IndexOf(lifecycle.EventTypeInitializerComplete, configloader.MilestoneSource)
	if done < 0 {
		return fmt.Errorf("%w: initializer.complete", errMilestoneMissing)
	}
	first := history.IndexOf(lifecycle.EventType(eventType), "")
	if first < 0 {
		return fmt.Errorf("%w: %s", errMilestoneMissing, eventType)
	}
	if first < done {
		return fmt.Errorf("%w: %s at %d, initializer.complete at %d", errMilestoneOutOfOrder, eventType, first, done)
	}
	return nil
}

func (c *StartupOrderBDDContext) theApplicationPhaseIs(phase string) error {
	if err := c.booted(); err != nil {
		return err
	}
	if got := string(c.app.Application().Phase()); got != phase {
		return fmt.Errorf("%w: got %s, want %s", errUnexpectedPhase, got, phase)
	}
	return nil
}

func (c *StartupOrderBDDContext) thePhasesWere(list string) error {
	if err := c.booted(); err != nil {
		return err
	}
	var got []string
	for _, p := range c.app.Application().PhaseHistory() {
		got = append(got, string(p))
	}
	if strings.Join(got, ",") != list {
		return fmt.Errorf("%w: got %s", errUnexpectedPhase, strings.Join(got, ","))
	}
	return nil
}

func (c *StartupOrderBDDContext) theStateListsTimes(name string, want int) error {
	if err := c.booted(); err != nil {
		return err
	}
	return eventually(func() error {
		got := 0
		for _, n := range c.app.Store().State().EffectsInitialized {
			if n == name {
				got++
			}
		}
		if got != want {
			return fmt.Errorf("%w: %s listed %d times, want %d", errUnexpectedCount, name, got, want)
		}
		return nil
	})
}

func (c *StartupOrderBDDContext) registrationIsActive(want int, name string) error {
	if err := c.booted(); err != nil {
		return err
	}
	got := 0
	for _, info := range c.app.Registrar().Active() {
		if info.Name == name {
			got++
		}
	}
	if got != want {
		return fmt.Errorf("%w: %d active %s registrations, want %d", errUnexpectedCount, got, name, want)
	}
	return nil
}

func (c *StartupOrderBDDContext) iTriggerLoad() error {
	if err := c.booted(); err != nil {
		return err
	}
	c.app.Store().Dispatch(context.Background(), store.LoadData{})
	return nil
}

func (c *StartupOrderBDDContext) iTriggerInit() error {
	if err := c.booted(); err != nil {
		return err
	}
	c.app.Store().Dispatch(context.Background(), store.InitApp{Timestamp: time.Now().UTC().Format(time.RFC3339Nano)})
	return nil
}

func (c *StartupOrderBDDContext) theStateDataEventuallyNamesTheUpstreamAPI() error {
	if err := c.booted(); err != nil {
		return err
	}
	want := "Data loaded from " + c.upstream.URL
	return eventually(func() error {
		data := c.app.Store().State().Data
		if data == nil || *data != want {
			return fmt.Errorf("%w: data %v, want %q", errUnexpectedState, data, want)
		}
		return nil
	})
}

func (c *StartupOrderBDDContext) theStateIsInitialized() error {
	if err := c.booted(); err != nil {
		return err
	}
	if !c.app.Store().State().Initialized {
		return fmt.Errorf("%w: not initialized", errUnexpectedState)
	}
	return nil
}

func (c *StartupOrderBDDContext) theStateHasNoData() error {
	if err := c.booted(); err != nil {
		return err
	}
	if data := c.app.Store().State().Data; data != nil {
		return fmt.Errorf("%w: data %q", errUnexpectedState, *data)
	}
	return nil
}

func (c *StartupOrderBDDContext) iNavigateTo(path string) error {
	if err := c.booted(); err != nil {
		return err
	}
	_, err := c.app.Router().Navigate(context.Background(), path)
	return err
}

func (c *StartupOrderBDDContext) theCurrentRouteIs(name string) error {
	if err := c.booted(); err != nil {
		return err
	}
	current := c.app.Router().Current()
	if current == nil || current.Route().Name != name {
		return fmt.Errorf("%w: want %s", errUnexpectedRoute, name)
	}
	return nil
}

func (c *StartupOrderBDDContext) theUpstreamAPIEventuallyReceives(path string) error {
	return eventually(func() error {
		c.upstreamMu.Lock()
		defer c.upstreamMu.Unlock()
		for _, p := range c.received {
			if p == path {
				return nil
			}
		}
		return fmt.Errorf("%w: %s not received (got %v)", errConditionNotMet, path, c.received)
	})
}

func (c *StartupOrderBDDContext) anInterceptorRequestRewroteWithTheConfigurationLoaded(path string) error {
	if err := c.booted(); err != nil {
		return err
	}
	want := c.upstream.URL + path
	return eventually(func() error {
		requests := c.app.History().Query(&lifecycle.QueryCriteria{
			EventTypes: []lifecycle.EventType{lifecycle.EventTypeInterceptorRequest},
		})
		for _, event := range requests {
			if event.Data["url"] == path && event.Data["modifiedUrl"] == want && event.Data["configLoaded"] == true {
				return nil
			}
		}
		return fmt.Errorf("%w: %s -> %s", errRewriteNotRecorded, path, want)
	})
}

// eventually polls check until it succeeds or the timeout passes.
func eventually(check func() error) error {
	deadline := time.Now().Add(eventuallyTimeout)
	for {
		err := check()
		if err == nil || time.Now().After(deadline) {
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// InitializeStartupOrderScenario wires the step definitions.
func InitializeStartupOrderScenario(ctx *godog.ScenarioContext) {
	testCtx := &StartupOrderBDDContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		testCtx.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		testCtx.cleanup()
		return ctx, nil
	})

	// Background
	ctx.Step(`^an upstream API that answers every request$`, testCtx.anUpstreamAPIThatAnswersEveryRequest)
	ctx.Step(`^the configuration fetch takes "([^"]*)"$`, testCtx.theConfigurationFetchTakes)

	// Startup
	ctx.Step(`^the application boots$`, testCtx.theApplicationBoots)
	ctx.Step(`^the initializer completes before the first "([^"]*)" milestone$`, testCtx.theInitializerCompletesBeforeTheFirstMilestone)
	ctx.Step(`^the application phase is "([^"]*)"$`, testCtx.theApplicationPhaseIs)
	ctx.Step(`^the phases were "([^"]*)"$`, testCtx.thePhasesWere)

	// State
	ctx.Step(`^the state lists "([^"]*)" (\d+) times?$`, testCtx.theStateListsTimes)
	ctx.Step(`^(\d+) "([^"]*)" registrations? (?:is|are) active$`, testCtx.registrationIsActive)
	ctx.Step(`^I trigger load$`, testCtx.iTriggerLoad)
	ctx.Step(`^I trigger init$`, testCtx.iTriggerInit)
	ctx.Step(`^the state data eventually names the upstream API$`, testCtx.theStateDataEventuallyNamesTheUpstreamAPI)
	ctx.Step(`^the state is initialized$`, testCtx.theStateIsInitialized)
	ctx.Step(`^the state has no data$`, testCtx.theStateHasNoData)

	// Routing and interception
	ctx.Step(`^I navigate to "([^"]*)"$`, testCtx.iNavigateTo)
	ctx.Step(`^the current route is "([^"]*)"$`, testCtx.theCurrentRouteIs)
	ctx.Step(`^the upstream API eventually receives "([^"]*)"$`, testCtx.theUpstreamAPIEventuallyReceives)
	ctx.Step(`^an interceptor request rewrote "([^"]*)" with the configuration loaded$`, testCtx.anInterceptorRequestRewroteWithTheConfigurationLoaded)
}

// TestStartupOrderFeatures runs the BDD tests for startup ordering
func TestStartupOrderFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeStartupOrderScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/startup_order.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

type nopTestLogger struct{}

func (nopTestLogger) Info(string, ...any)  {}
func (nopTestLogger) Error(string, ...any) {}
func (nopTestLogger) Warn(string, ...any)  {}
func (nopTestLogger) Debug(string, ...any) {}
