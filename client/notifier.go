package client

import (
	"context"
	"sync"
	"time"
)

const defaultPollInterval = 15 * time.Second

// ChangeEvent describes what a poll observed after the record set changed.
type ChangeEvent struct {
	TotalRecords  int64
	NewestUpdated time.Time
	ObservedAt    time.Time
}

// Notifier approximates server push by polling the report list and notifying
// subscribers when the record set changes. At most one poll loop runs at a
// time: Start clears any prior loop, Stop is a no-op when already stopped,
// and a stopped loop discards responses that arrive late. Failed polls are
// skipped silently; the schedule continues.
type Notifier struct {
	client   *Client
	interval time.Duration

	mu      sync.Mutex
	subs    map[int]func(ChangeEvent)
	nextSub int
	stop    chan struct{}
	running bool

	primed     bool
	lastTotal  int64
	lastNewest time.Time
}

func NewNotifier(client *Client, interval time.Duration) *Notifier {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Notifier{
		client:   client,
		interval: interval,
		subs:     make(map[int]func(ChangeEvent)),
	}
}

// Subscribe registers a callback for change events and returns a token for
// Unsubscribe. Callbacks run on the poll goroutine.
func (n *Notifier) Subscribe(fn func(ChangeEvent)) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextSub++
	n.subs[n.nextSub] = fn
	return n.nextSub
}

func (n *Notifier) Unsubscribe(token int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, token)
}

// Start begins polling. Any previously running loop is stopped first.
func (n *Notifier) Start() {
	n.mu.Lock()
	n.stopLocked()
	stop := make(chan struct{})
	n.stop = stop
	n.running = true
	interval := n.interval
	n.mu.Unlock()

	go n.loop(stop, interval)
}

// Stop halts polling. Stopping an already-stopped notifier is a no-op.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
}

// Restart stops the current loop and starts a new one, optionally with a new
// interval.
func (n *Notifier) Restart(interval time.Duration) {
	n.mu.Lock()
	if interval > 0 {
		n.interval = interval
	}
	n.mu.Unlock()
	n.Start()
}

func (n *Notifier) stopLocked() {
	if !n.running {
		return
	}
	close(n.stop)
	n.running = false
}

func (n *Notifier) loop(stop chan struct{}, interval time.Duration) {
	// Prime the snapshot right away so the first tick can already diff.
	n.poll(stop)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.poll(stop)
		}
	}
}

// poll fetches the newest-first list head: one page of one item carries both
// the total count and the most recent update time.
func (n *Notifier) poll(stop chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, err := n.client.ListReports(ctx, ListOptions{Page: 1, Limit: 1})
	if err != nil {
		return
	}
	var newest time.Time
	if len(page.Items) > 0 {
		newest = page.Items[0].UpdatedAt
	}

	n.mu.Lock()
	select {
	case <-stop:
		// Stopped while the request was in flight; drop the late response.
		n.mu.Unlock()
		return
	default:
	}

	changed := n.primed && (page.TotalRecords != n.lastTotal || !newest.Equal(n.lastNewest))
	n.primed = true
	n.lastTotal = page.TotalRecords
	n.lastNewest = newest

	var fns []func(ChangeEvent)
	if changed {
		fns = make([]func(ChangeEvent), 0, len(n.subs))
		for _, fn := range n.subs {
			fns = append(fns, fn)
		}
	}
	n.mu.Unlock()

	if len(fns) == 0 {
		return
	}
	ev := ChangeEvent{
		TotalRecords:  page.TotalRecords,
		NewestUpdated: newest,
		ObservedAt:    time.Now().UTC(),
	}
	for _, fn := range fns {
		fn(ev)
	}
}
