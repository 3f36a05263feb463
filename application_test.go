package initorder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/initorder/lifecycle"
)

var errTestInit = errors.New("init failed")

// callLog records lifecycle calls across modules in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// trackingModule implements every optional lifecycle interface.
type trackingModule struct {
	name      string
	deps      []string
	log       *callLog
	initErr   error
	services  []ServiceProvider
	sawReady  bool
	startedIn Phase
}

func (m *trackingModule) Name() string           { return m.name }
func (m *trackingModule) Dependencies() []string { return m.deps }

func (m *trackingModule) Init(app Application) error {
	m.log.add("init:" + m.name)
	m.sawReady = app.Ready().Fired()
	return m.initErr
}

func (m *trackingModule) Start(context.Context) error {
	m.log.add("start:" + m.name)
	return nil
}

func (m *trackingModule) Stop(context.Context) error {
	m.log.add("stop:" + m.name)
	return nil
}

func (m *trackingModule) ProvidesServices() []ServiceProvider { return m.services }

// slowInitializer resolves after delay, or fails with err.
type slowInitializer struct {
	name    string
	delay   time.Duration
	err     error
	log     *callLog
	running *atomic.Int32
	peak    *atomic.Int32
}

func (m *slowInitializer) Name() string { return m.name }

func (m *slowInitializer) Init(Application) error {
	m.log.add("init:" + m.name)
	return nil
}

func (m *slowInitializer) Initialize(ctx context.Context, app Application) error {
	if m.running != nil {
		n := m.running.Add(1)
		defer m.running.Add(-1)
		for {
			p := m.peak.Load()
			if n <= p || m.peak.CompareAndSwap(p, n) {
				break
			}
		}
	}
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	m.log.add("initialize:" + m.name)
	return m.err
}

func newTestApp(t *testing.T) (*StdApplication, *lifecycle.MemoryStore) {
	t.Helper()
	history := lifecycle.NewMemoryStore()
	app := NewStdApplication(nil, nil)
	app.SetConfigFeeders(nil)
	require.NoError(t, app.RegisterMilestoneObserver(history))
	return app, history
}

func TestNewStdApplication_Defaults(t *testing.T) {
	app := NewStdApplication(nil, nil)

	assert.NotNil(t, app.ConfigProvider())
	assert.IsType(t, &AppConfig{}, app.ConfigProvider().GetConfig())
	assert.NotNil(t, app.Logger())
	assert.Empty(t, app.SvcRegistry())
	assert.Equal(t, PhaseUninitialized, app.Phase())
	assert.False(t, app.Ready().Fired())
}

func TestInit_DependencyOrder(t *testing.T) {
	app, _ := newTestApp(t)
	log := &callLog{}

	app.RegisterModule(&trackingModule{name: "views", deps: []string{"router", "store"}, log: log})
	app.RegisterModule(&trackingModule{name: "router", deps: []string{"store"}, log: log})
	app.RegisterModule(&trackingModule{name: "store", log: log})
	app.RegisterModule(&trackingModule{name: "alpha", log: log})

	require.NoError(t, app.Init())
	assert.Equal(t, []string{"init:alpha", "init:store", "init:router", "init:views"}, log.list())
}

func TestInit_CircularDependency(t *testing.T) {
	app, _ := newTestApp(t)
	log := &callLog{}
	app.RegisterModule(&trackingModule{name: "a", deps: []string{"b"}, log: log})
	app.RegisterModule(&trackingModule{name: "b", deps: []string{"a"}, log: log})

	err := app.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularDependency)
	assert.Empty(t, log.list())
}

func TestInit_MissingDependency(t *testing.T) {
	app, _ := newTestApp(t)
	app.RegisterModule(&trackingModule{name: "a", deps: []string{"ghost"}, log: &callLog{}})

	err := app.Init()
	assert.ErrorIs(t, err, ErrModuleDependencyMissing)
}

func TestInit_InitializersCompleteBeforeAnyModuleInit(t *testing.T) {
	app, history := newTestApp(t)
	log := &callLog{}
	running, peak := &atomic.Int32{}, &atomic.Int32{}

	consumer := &trackingModule{name: "consumer", deps: []string{"config-a", "config-b"}, log: log}
	app.RegisterModule(consumer)
	app.RegisterModule(&slowInitializer{name: "config-a", delay: 40 * time.Millisecond, log: log, running: running, peak: peak})
	app.RegisterModule(&slowInitializer{name: "config-b", delay: 40 * time.Millisecond, log: log, running: running, peak: peak})

	require.NoError(t, app.Init())

	calls := log.list()
	require.Len(t, calls, 5)
	assert.ElementsMatch(t, []string{"initialize:config-a", "initialize:config-b"}, calls[:2])
	assert.Equal(t, []string{"init:config-a", "init:config-b", "init:consumer"}, calls[2:])
	assert.True(t, consumer.sawReady, "barrier fired before phase 2")
	assert.Equal(t, int32(2), peak.Load(), "initializers run concurrently")

	assert.Equal(t, PhaseConfigReady, app.Phase())
	assert.Less(t,
		history.IndexOf(lifecycle.EventTypePhaseChanged, milestoneSource),
		history.IndexOf(lifecycle.EventTypeModuleInitialized, milestoneSource))
}

func TestInit_InitializerFailureStopsStartup(t *testing.T) {
	app, _ := newTestApp(t)
	log := &callLog{}
	app.RegisterModule(&slowInitializer{name: "config", delay: time.Millisecond, err: errTestInit, log: log})
	app.RegisterModule(&trackingModule{name: "store", log: log})

	err := app.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitializerFailed)
	assert.ErrorIs(t, err, errTestInit)
	assert.False(t, app.Ready().Fired())
	assert.Equal(t, PhaseConfigLoading, app.Phase())
	assert.Equal(t, []string{"initialize:config"}, log.list())

	assert.ErrorIs(t, app.Start(), ErrNotInitialized)
}

func TestInit_CancelledContext(t *testing.T) {
	app, _ := newTestApp(t)
	app.RegisterModule(&slowInitializer{name: "config", delay: time.Hour, log: &callLog{}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := app.InitWithContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, app.Ready().Fired())
}

func TestInit_Twice(t *testing.T) {
	app, _ := newTestApp(t)
	require.NoError(t, app.Init())
	assert.ErrorIs(t, app.Init(), ErrAlreadyInitialized)
}

func TestInit_ModuleFailure(t *testing.T) {
	app, _ := newTestApp(t)
	app.RegisterModule(&trackingModule{name: "broken", initErr: errTestInit, log: &callLog{}})

	err := app.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, errTestInit)
	assert.Contains(t, err.Error(), "broken")
}

func TestInit_RegistersProvidedServices(t *testing.T) {
	app, _ := newTestApp(t)
	app.RegisterModule(&trackingModule{
		name:     "provider",
		log:      &callLog{},
		services: []ServiceProvider{{Name: "greeting", Instance: "hello"}},
	})
	require.NoError(t, app.Init())

	var got string
	require.NoError(t, app.GetService("greeting", &got))
	assert.Equal(t, "hello", got)
}

func TestStartStop_Lifecycle(t *testing.T) {
	app, history := newTestApp(t)
	log := &callLog{}
	app.RegisterModule(&trackingModule{name: "store", log: log})
	app.RegisterModule(&trackingModule{name: "effects", deps: []string{"store"}, log: log})

	assert.ErrorIs(t, app.Start(), ErrNotInitialized)

	require.NoError(t, app.Init())
	require.NoError(t, app.Start())
	assert.Equal(t, PhaseReady, app.Phase())
	assert.Equal(t, []Phase{
		PhaseUninitialized, PhaseConfigLoading, PhaseConfigReady, PhaseRootEffectsRegistering, PhaseReady,
	}, app.PhaseHistory())

	require.NoError(t, app.Stop())
	assert.Equal(t, []string{
		"init:store", "init:effects",
		"start:store", "start:effects",
		"stop:effects", "stop:store",
	}, log.list())
	assert.Equal(t, 2, history.Count(lifecycle.EventTypeModuleStopped))
}

func TestMilestones_StampedWithPhase(t *testing.T) {
	app, history := newTestApp(t)
	require.NoError(t, app.Init())

	lifecycle.NewEmitter(app.Milestones(), "TEST").Emit(context.Background(), lifecycle.EventTypeStoreReady, "probe")
	events := history.Query(&lifecycle.QueryCriteria{Sources: []string{"TEST"}})
	require.Len(t, events, 1)
	assert.Equal(t, string(PhaseConfigReady), events[0].Phase)
	assert.NotEmpty(t, events[0].ID)
	assert.Positive(t, events[0].Seq)
}

func TestRunWithContext_StopsOnCancel(t *testing.T) {
	app, _ := newTestApp(t)
	log := &callLog{}
	app.RegisterModule(&trackingModule{name: "store", log: log})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunWithContext(ctx) }()

	require.Eventually(t, func() bool { return app.Phase() == PhaseReady }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunWithContext did not return")
	}
	assert.Contains(t, log.list(), "stop:store")
}
