package configloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
)

// MilestoneSource tags milestones recorded by the loader.
const MilestoneSource = "APP_INITIALIZER"

// ErrAlreadyLoaded is returned by a second call to Load.
var ErrAlreadyLoaded = errors.New("configuration already loaded")

// Configuration is produced once by Load and never changes afterwards.
type Configuration struct {
	APIURL      string    `json:"apiUrl"`
	Environment string    `json:"environment"`
	LoadedAt    time.Time `json:"loadedAt"`
}

// Provider gives read access to the loaded configuration.
type Provider interface {
	GetConfig() (Configuration, bool)
}

// Loader simulates fetching configuration from a server.
type Loader struct {
	cfg       *LoaderConfig
	milestone *lifecycle.Emitter
	logger    initorder.Logger

	once   sync.Once
	mu     sync.RWMutex
	config *Configuration
}

// NewLoader creates a loader. cfg supplies the fetched values and delay.
func NewLoader(cfg *LoaderConfig, sink lifecycle.EventSink, logger initorder.Logger) *Loader {
	return &Loader{
		cfg:       cfg,
		milestone: lifecycle.NewEmitter(sink, MilestoneSource),
		logger:    logger,
	}
}

// Load waits FetchDelay then stores the configuration. It can run only once;
// later calls return ErrAlreadyLoaded. The only failure is ctx ending first,
// in which case no configuration is stored.
func (l *Loader) Load(ctx context.Context) error {
	first := false
	l.once.Do(func() { first = true })
	if !first {
		return ErrAlreadyLoaded
	}

	start := time.Now()
	l.milestone.EmitStatus(ctx, lifecycle.EventTypeInitializerStart, lifecycle.EventStatusStarted,
		"START - configuration load starting", "fetchDelay", l.cfg.FetchDelay.String())

	timer := time.NewTimer(l.cfg.FetchDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		l.milestone.EmitStatus(ctx, lifecycle.EventTypeInitializerComplete, lifecycle.EventStatusFailed,
			"Configuration load cancelled", "error", ctx.Err().Error())
		return fmt.Errorf("configuration load: %w", ctx.Err())
	}

	loaded := Configuration{
		APIURL:      l.cfg.APIURL,
		Environment: l.cfg.Environment,
		LoadedAt:    time.Now(),
	}
	l.mu.Lock()
	l.config = &loaded
	l.mu.Unlock()

	duration := time.Since(start)
	l.milestone.EmitStatus(ctx, lifecycle.EventTypeInitializerComplete, lifecycle.EventStatusCompleted,
		"COMPLETE - configuration load finished",
		"durationMs", duration.Milliseconds(),
		"apiUrl", loaded.APIURL,
		"environment", loaded.Environment,
		"loadedAt", loaded.LoadedAt.Format(time.RFC3339Nano))
	if l.logger != nil {
		l.logger.Debug("Configuration loaded", "duration", duration, "apiUrl", loaded.APIURL)
	}
	return nil
}

// GetConfig returns the configuration, or false before Load completes.
func (l *Loader) GetConfig() (Configuration, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.config == nil {
		return Configuration{}, false
	}
	return *l.config, true
}
