package discover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Diagnostic artifact filenames written under the artifact directory.
const (
	// EndpointsFile records the start URL and background network calls
	// observed during the session. Informational only.
	EndpointsFile = "endpoints.json"

	// DumpFile receives the fully rendered document when discovery
	// finds nothing, for offline diagnosis.
	DumpFile = "listing_dump.html"
)

// interactionTimeout bounds each individual click attempt.
const interactionTimeout = 3 * time.Second

// consentSelectors are tried once at session start to dismiss cookie or
// consent banners that would otherwise cover the listing.
var consentSelectors = []string{
	`button[aria-label="Accept"]`,
	`button#onetrust-accept-btn-handler`,
	`button.accept-cookies`,
}

// loadMoreSelectors locate the pagination control. The listing renders
// more entries in place when it is clicked.
var loadMoreSelectors = []string{
	`button.load-more`,
	`a.load-more`,
	`button[data-load-more]`,
}

// scrollStrategies are executed in order every cycle to trigger lazy
// loading. Kept data-driven so each snippet stays independently small.
var scrollStrategies = []struct {
	name string
	js   string
}{
	{name: "scroll-bottom", js: `window.scrollTo(0, document.body.scrollHeight)`},
	{name: "scroll-step", js: `window.scrollBy(0, window.innerHeight)`},
	{name: "scroll-event", js: `window.dispatchEvent(new Event('scroll'))`},
}

// Discoverer harvests detail links from one listing page.
type Discoverer struct {
	startURL        string
	pattern         *regexp.Regexp
	maxItems        int
	idleCycles      int
	settleInterval  time.Duration
	checkpointEvery int
	checkpoint      func(urls []string) error
	artifactDir     string
	logger          *slog.Logger
	headless        bool
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) { d.logger = logger }
}

// WithMaxItems caps the size of the discovered set. Default is 400.
func WithMaxItems(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.maxItems = n
		}
	}
}

// WithIdleCycles sets how many consecutive no-progress cycles end the
// session. Default is 10.
func WithIdleCycles(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.idleCycles = n
		}
	}
}

// WithSettleInterval sets the wait after each interaction cycle.
func WithSettleInterval(dur time.Duration) Option {
	return func(d *Discoverer) {
		if dur > 0 {
			d.settleInterval = dur
		}
	}
}

// WithCheckpoint installs a callback invoked with the full discovered
// set every n newly found URLs, bounding data loss on a crash.
func WithCheckpoint(every int, fn func(urls []string) error) Option {
	return func(d *Discoverer) {
		if every > 0 && fn != nil {
			d.checkpointEvery = every
			d.checkpoint = fn
		}
	}
}

// WithArtifactDir sets where diagnostic artifacts are written. Empty
// disables them.
func WithArtifactDir(dir string) Option {
	return func(d *Discoverer) { d.artifactDir = dir }
}

// WithHeadful runs a visible browser window. Useful when debugging why a
// listing won't load.
func WithHeadful() Option {
	return func(d *Discoverer) { d.headless = false }
}

// New creates a Discoverer for one listing URL. Links are kept only when
// they match pattern.
func New(startURL string, pattern *regexp.Regexp, opts ...Option) *Discoverer {
	d := &Discoverer{
		startURL:        startURL,
		pattern:         pattern,
		maxItems:        400,
		idleCycles:      10,
		settleInterval:  800 * time.Millisecond,
		checkpointEvery: 500,
		headless:        true,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Run executes the discovery session and returns the sorted set of
// harvested detail URLs. On context cancellation the accumulated set is
// returned alongside the context error so the caller can still persist
// partial progress.
func (d *Discoverer) Run(ctx context.Context) ([]string, error) {
	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if !d.headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	endpoints := d.captureEndpoints(browserCtx)

	if err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(d.startURL),
	); err != nil {
		return nil, fmt.Errorf("failed to open listing page: %w", err)
	}

	if res := d.clickFirst(browserCtx, consentSelectors); res == Found {
		d.logger.Debug("consent banner dismissed")
	}

	found := make(map[string]bool)
	idle := 0
	lastHeight := 0
	lastCheckpoint := 0

	for len(found) < d.maxItems && idle < d.idleCycles {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("discovery cancelled", "found", len(found))
			return d.finish(browserCtx, found, endpoints), err
		}

		loadMore := d.clickFirst(browserCtx, loadMoreSelectors)
		d.runScrollStrategies(browserCtx)

		select {
		case <-time.After(d.settleInterval):
		case <-ctx.Done():
			return d.finish(browserCtx, found, endpoints), ctx.Err()
		}

		newLinks := d.harvest(browserCtx, found)
		height := d.pageHeight(browserCtx)

		grew := height > lastHeight
		lastHeight = height

		if newLinks > 0 || grew || loadMore == Found {
			idle = 0
		} else {
			idle++
		}

		d.logger.Debug("discovery cycle",
			"found", len(found),
			"new", newLinks,
			"height", height,
			"load_more", loadMore.String(),
			"idle", idle,
		)

		if d.checkpoint != nil && len(found)-lastCheckpoint >= d.checkpointEvery {
			lastCheckpoint = len(found)
			if err := d.checkpoint(sortedKeys(found)); err != nil {
				d.logger.Warn("checkpoint failed", "error", err)
			}
		}
	}

	return d.finish(browserCtx, found, endpoints), nil
}

// finish writes diagnostic artifacts and returns the sorted set.
func (d *Discoverer) finish(browserCtx context.Context, found map[string]bool, endpoints *endpointLog) []string {
	if len(found) == 0 {
		d.dumpDocument(browserCtx)
	}
	d.writeEndpoints(endpoints)

	urls := sortedKeys(found)
	d.logger.Info("discovery finished", "found", len(urls))
	return urls
}

// clickFirst attempts the selectors in order and reports how the first
// present one behaved. Absence of every selector is NotFound; an attempt
// that ran out of time without any selector succeeding is TimedOut.
func (d *Discoverer) clickFirst(browserCtx context.Context, selectors []string) InteractionResult {
	result := NotFound
	for _, sel := range selectors {
		attemptCtx, cancel := context.WithTimeout(browserCtx, interactionTimeout)
		err := chromedp.Run(attemptCtx,
			chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible),
		)
		cancel()

		switch classifyInteraction(err) {
		case Found:
			return Found
		case TimedOut:
			// Selector not present within the attempt window; remember
			// the timeout but keep trying the remaining selectors.
			result = TimedOut
		default:
			d.logger.Debug("click failed", "selector", sel, "error", err)
		}
	}
	return result
}

// classifyInteraction maps one attempt's error onto an InteractionResult.
func classifyInteraction(err error) InteractionResult {
	switch {
	case err == nil:
		return Found
	case errors.Is(err, context.DeadlineExceeded):
		return TimedOut
	default:
		return NotFound
	}
}

// runScrollStrategies fires each lazy-load trigger, ignoring individual
// failures.
func (d *Discoverer) runScrollStrategies(browserCtx context.Context) {
	for _, strategy := range scrollStrategies {
		if err := chromedp.Run(browserCtx,
			chromedp.Evaluate(strategy.js, nil),
		); err != nil {
			d.logger.Debug("scroll strategy failed", "strategy", strategy.name, "error", err)
		}
	}
}

// harvest collects every anchor href, filters it against the detail
// pattern, and merges it into the set. Returns how many were new.
func (d *Discoverer) harvest(browserCtx context.Context, found map[string]bool) int {
	var hrefs []string
	err := chromedp.Run(browserCtx,
		chromedp.Evaluate(`Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`, &hrefs),
	)
	if err != nil {
		d.logger.Debug("harvest failed", "error", err)
		return 0
	}
	return mergeMatches(found, hrefs, d.pattern)
}

// mergeMatches adds pattern-matching hrefs to the set and returns the
// number of newly added entries.
func mergeMatches(found map[string]bool, hrefs []string, pattern *regexp.Regexp) int {
	added := 0
	for _, href := range hrefs {
		if !pattern.MatchString(href) {
			continue
		}
		if !found[href] {
			found[href] = true
			added++
		}
	}
	return added
}

// pageHeight reads the rendered document height, 0 on failure.
func (d *Discoverer) pageHeight(browserCtx context.Context) int {
	var height int
	if err := chromedp.Run(browserCtx,
		chromedp.Evaluate(`document.body ? document.body.scrollHeight : 0`, &height),
	); err != nil {
		return 0
	}
	return height
}

// dumpDocument writes the rendered markup for offline diagnosis when the
// session found nothing.
func (d *Discoverer) dumpDocument(browserCtx context.Context) {
	if d.artifactDir == "" {
		return
	}
	var html string
	if err := chromedp.Run(browserCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		d.logger.Warn("document dump failed", "error", err)
		return
	}
	path, err := d.writeArtifact(DumpFile, []byte(html))
	if err != nil {
		d.logger.Warn("document dump write failed", "path", path, "error", err)
		return
	}
	d.logger.Info("zero results, rendered document dumped", "path", path)
}

// writeArtifact creates the artifact directory on first use and writes
// the named file into it.
func (d *Discoverer) writeArtifact(name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.artifactDir, 0750); err != nil {
		return d.artifactDir, err
	}
	path := filepath.Join(d.artifactDir, name)
	return path, os.WriteFile(path, data, 0600)
}

// endpointLog accumulates background network calls seen during the
// session.
type endpointLog struct {
	StartURL  string   `json:"start_url"`
	Endpoints []string `json:"endpoints"`

	mu   sync.Mutex
	seen map[string]bool
}

// captureEndpoints subscribes to request events on the browser target.
func (d *Discoverer) captureEndpoints(browserCtx context.Context) *endpointLog {
	log := &endpointLog{
		StartURL: d.startURL,
		seen:     make(map[string]bool),
	}

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		req, ok := ev.(*network.EventRequestWillBeSent)
		if !ok {
			return
		}
		if req.Type != network.ResourceTypeXHR && req.Type != network.ResourceTypeFetch {
			return
		}
		log.mu.Lock()
		if !log.seen[req.Request.URL] {
			log.seen[req.Request.URL] = true
			log.Endpoints = append(log.Endpoints, req.Request.URL)
		}
		log.mu.Unlock()
	})

	return log
}

// writeEndpoints persists the endpoint log artifact.
func (d *Discoverer) writeEndpoints(log *endpointLog) {
	if d.artifactDir == "" {
		return
	}
	log.mu.Lock()
	sort.Strings(log.Endpoints)
	data, err := json.MarshalIndent(log, "", "  ")
	log.mu.Unlock()
	if err != nil {
		d.logger.Warn("endpoint log marshal failed", "error", err)
		return
	}
	if path, err := d.writeArtifact(EndpointsFile, data); err != nil {
		d.logger.Warn("endpoint log write failed", "path", path, "error", err)
	}
}

// sortedKeys returns the set's members in lexical order.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
