package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/highlight/internal/annotator"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driven"
	"github.com/custodia-labs/highlight/internal/core/ports/driving"
	"github.com/custodia-labs/highlight/internal/dom"
	"github.com/custodia-labs/highlight/internal/logger"
)

// Ensure Coordinator implements the interface.
var _ driving.ChangeCoordinator = (*Coordinator)(nil)

// maxReports bounds the scan history kept by a coordinator.
const maxReports = 64

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	// Regions are the content roots scanned on every pass.
	// Defaults to annotator.GitHubRegions().
	Regions []annotator.Region

	// Resolver detects the viewer when none is configured. Optional.
	Resolver driven.ViewerResolver

	// OnScan is called on the loop after every executed scan. Optional.
	OnScan func(domain.ScanReport)
}

// Coordinator keeps a live document annotated. Document and configuration
// are only touched from callbacks running on the event loop; the mutex
// guards the fields that are also read from other goroutines.
type Coordinator struct {
	doc      *dom.Document
	store    driven.ConfigStore
	loop     driven.EventLoop
	regions  []annotator.Region
	resolver driven.ViewerResolver
	onScan   func(domain.ScanReport)
	scanner  *annotator.Scanner

	// Loop-only state.
	pattern      *annotator.Pattern
	patternValid bool
	triggers     []domain.Trigger
	applying     bool
	stopObserve  func()
	unsubscribe  func()

	mu      sync.Mutex
	state   driving.CoordinatorState
	cfg     domain.Configuration
	reports []domain.ScanReport
	started bool
	stopped bool
}

// NewCoordinator creates a coordinator for doc.
func NewCoordinator(doc *dom.Document, store driven.ConfigStore, loop driven.EventLoop, opts CoordinatorOptions) *Coordinator {
	regions := opts.Regions
	if len(regions) == 0 {
		regions = annotator.GitHubRegions()
	}
	return &Coordinator{
		doc:      doc,
		store:    store,
		loop:     loop,
		regions:  regions,
		resolver: opts.Resolver,
		onScan:   opts.OnScan,
		scanner:  annotator.NewScanner(doc),
		cfg:      defaultConfiguration(),
	}
}

// Start posts initialisation onto the loop: legacy migration, config load,
// viewer detection, subscriptions, and the initial scan. Failures during
// initialisation are logged and the coordinator continues with defaults.
func (c *Coordinator) Start(ctx context.Context) error {
	if c.doc == nil || c.loop == nil {
		return fmt.Errorf("%w: coordinator needs a document and an event loop", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	c.loop.Post(func() { c.initialise(ctx) })
	return nil
}

// Stop detaches from the document and the store. A scan already requested
// does nothing when its frame fires.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	c.loop.Post(func() {
		defer logger.Recover("coordinator stop")
		if c.stopObserve != nil {
			c.stopObserve()
			c.stopObserve = nil
		}
		if c.unsubscribe != nil {
			c.unsubscribe()
			c.unsubscribe = nil
		}
	})
}

// NotifyNavigation schedules a scan for a completed client-side navigation.
func (c *Coordinator) NotifyNavigation(kind domain.NavigationKind) {
	if !kind.IsValid() {
		logger.Warn("Ignoring unknown navigation signal %q", kind)
		return
	}
	c.loop.Post(func() {
		defer logger.Recover("navigation handler")
		logger.Debug("Navigation signal %s", kind)
		c.schedule(domain.TriggerNavigation)
	})
}

// NotifyConfigChange applies changes to the cached configuration, removes
// every marker, and schedules a rescan.
func (c *Coordinator) NotifyConfigChange(changes domain.ChangeSet) {
	c.loop.Post(func() { c.handleConfigChange(changes) })
}

// State returns the current scheduling state.
func (c *Coordinator) State() driving.CoordinatorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Configuration returns a copy of the cached configuration.
func (c *Coordinator) Configuration() domain.Configuration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Clone()
}

// Scans returns the reports of the most recent executed scans, oldest first.
func (c *Coordinator) Scans() []domain.ScanReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.reports)
}

func (c *Coordinator) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

func (c *Coordinator) initialise(ctx context.Context) {
	defer logger.Recover("coordinator start")
	if c.isStopped() {
		return
	}

	if c.store != nil {
		if _, err := Migrate(c.store); err != nil {
			logger.Error("migrating config: %v", err)
		}
	}

	cfg, err := LoadConfiguration(c.store)
	switch {
	case errors.Is(err, domain.ErrMalformedConfig):
		logger.Warn("%v", err)
	case err != nil:
		logger.Error("loading config, using defaults: %v", err)
		cfg = defaultConfiguration()
	}

	if cfg.Viewer.IsZero() {
		cfg.Viewer.Text = c.detectViewer(ctx)
	}
	c.setConfiguration(cfg)

	if c.store != nil {
		c.unsubscribe = c.store.Subscribe(func(changes domain.ChangeSet) {
			c.loop.Post(func() { c.handleConfigChange(changes) })
		})
	}
	c.stopObserve = c.doc.Observe(c.observe)

	c.schedule(domain.TriggerInitial)
}

// detectViewer asks the resolver for the viewer and persists a hit.
func (c *Coordinator) detectViewer(ctx context.Context) string {
	if c.resolver == nil {
		return ""
	}
	name, err := c.resolver.ResolveViewer(ctx)
	if err != nil {
		logger.Warn("Could not detect viewer: %v", err)
		return ""
	}
	if name == "" {
		return ""
	}
	logger.Info("Detected viewer %s", name)
	if c.store != nil {
		if err := c.store.Set(map[string]any{domain.KeyViewer: name}); err != nil {
			logger.Error("saving detected viewer: %v", err)
		}
	}
	return name
}

func (c *Coordinator) observe(records []dom.MutationRecord) {
	defer logger.Recover("mutation observer")
	if c.applying {
		return
	}
	for _, r := range records {
		if r.HasAddedElement() {
			c.schedule(domain.TriggerMutation)
			return
		}
	}
}

func (c *Coordinator) handleConfigChange(changes domain.ChangeSet) {
	defer logger.Recover("config change handler")
	if c.isStopped() || !changes.Touches() {
		return
	}

	current := c.Configuration()
	record := map[string]any{
		domain.KeyViewer:      current.Viewer.Text,
		domain.KeyViewerColor: current.Viewer.Color,
		domain.KeyWatchlist:   EncodeWatchlist(current.Watchlist),
	}
	defaults := domain.DefaultRecord()
	for key, change := range changes {
		if _, ok := defaults[key]; !ok {
			continue
		}
		if change.NewValue == nil {
			record[key] = defaults[key]
		} else {
			record[key] = change.NewValue
		}
	}

	cfg, err := DecodeConfiguration(record)
	if err != nil {
		logger.Warn("%v", err)
	}
	c.setConfiguration(cfg)

	var removed int
	c.masked(func() { removed = annotator.Unannotate(c.doc.Root(), c.doc) })
	logger.Debug("Config changed (%d key(s)), removed %d marker(s)", len(changes), removed)

	c.schedule(domain.TriggerConfig)
}

func (c *Coordinator) setConfiguration(cfg domain.Configuration) {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	c.patternValid = false
}

// schedule requests a scan for the next frame unless one is already pending.
func (c *Coordinator) schedule(trigger domain.Trigger) {
	if !slices.Contains(c.triggers, trigger) {
		c.triggers = append(c.triggers, trigger)
	}

	c.mu.Lock()
	if c.state == driving.StateScanPending || c.stopped {
		c.mu.Unlock()
		return
	}
	c.state = driving.StateScanPending
	c.mu.Unlock()

	c.loop.RequestFrame(c.runScan)
}

func (c *Coordinator) runScan() {
	defer logger.Recover("scheduled scan")

	triggers := c.triggers
	c.triggers = nil

	c.mu.Lock()
	c.state = driving.StateIdle
	stopped := c.stopped
	cfg := c.cfg
	c.mu.Unlock()
	if stopped {
		return
	}

	if !c.patternValid {
		c.pattern = annotator.Compile(cfg)
		c.patternValid = true
	}

	report := domain.ScanReport{
		ID:        uuid.NewString(),
		Triggers:  triggers,
		StartedAt: time.Now(),
	}

	var stats annotator.ScanStats
	c.masked(func() { stats = c.scanBody(cfg) })

	report.Duration = time.Since(report.StartedAt)
	report.Runs = stats.Runs
	report.Annotated = stats.Annotated
	report.Markers = stats.Markers
	report.Failures = stats.Failures

	c.mu.Lock()
	c.reports = append(c.reports, report)
	if len(c.reports) > maxReports {
		c.reports = slices.Clone(c.reports[len(c.reports)-maxReports:])
	}
	c.mu.Unlock()

	logger.Debug("Scan %s (%v): %d marker(s) in %d run(s), %d failure(s)",
		report.ID, triggers, report.Markers, report.Annotated, report.Failures)

	if c.onScan != nil {
		c.reportScan(report)
	}
}

// masked runs fn with the coordinator's own mutation records ignored.
func (c *Coordinator) masked(fn func()) {
	c.applying = true
	defer func() { c.applying = false }()
	fn()
}

// scanBody runs the scan with panics contained.
func (c *Coordinator) scanBody(cfg domain.Configuration) (stats annotator.ScanStats) {
	defer logger.Recover("scan pass")
	return c.scanner.ScanRegions(c.doc, c.regions, c.pattern, cfg)
}

func (c *Coordinator) reportScan(report domain.ScanReport) {
	defer logger.Recover("scan listener")
	c.onScan(report)
}

func defaultConfiguration() domain.Configuration {
	return domain.Configuration{
		Viewer: domain.ViewerIdentity{Color: domain.DefaultViewerColor},
	}
}
