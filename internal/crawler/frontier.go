package crawler

import "github.com/nao1215/docscrape/internal/model"

// Frontier is the queue of URLs waiting to be crawled.
// URLs are dequeued in FIFO order within the same enqueue batch,
// and every URL is admitted at most once across the whole crawl.
//
// Frontier is not safe for concurrent use. The engine owns it from
// a single goroutine; workers never touch it.
type Frontier struct {
	// queue holds the pending entries in dequeue order.
	queue []model.PendingURL

	// seen tracks every normalized URL ever admitted, including
	// URLs already dequeued. Re-enqueueing a seen URL is a no-op.
	seen map[string]bool
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		queue: make([]model.PendingURL, 0),
		seen:  make(map[string]bool),
	}
}

// Enqueue adds a URL to the frontier unless it was admitted before.
// It reports whether the URL was actually added.
func (f *Frontier) Enqueue(entry model.PendingURL) bool {
	if f.seen[entry.URL] {
		return false
	}
	f.seen[entry.URL] = true
	f.queue = append(f.queue, entry)
	return true
}

// EnqueueAll adds each URL in order, skipping duplicates.
// It returns the number of URLs added.
func (f *Frontier) EnqueueAll(entries []model.PendingURL) int {
	added := 0
	for _, entry := range entries {
		if f.Enqueue(entry) {
			added++
		}
	}
	return added
}

// Readmit puts a previously dequeued URL back at the end of the
// queue. The engine uses this when a crawl is cancelled while the
// URL is in flight, so the checkpoint still covers it.
func (f *Frontier) Readmit(entry model.PendingURL) {
	f.seen[entry.URL] = true
	f.queue = append(f.queue, entry)
}

// Dequeue removes and returns the next URL.
// The second return value is false when the frontier is empty.
func (f *Frontier) Dequeue() (model.PendingURL, bool) {
	if len(f.queue) == 0 {
		return model.PendingURL{}, false
	}
	entry := f.queue[0]
	f.queue = f.queue[1:]
	return entry, true
}

// Len returns the number of URLs waiting in the queue.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// MarkSeen records a URL as already admitted without queueing it.
// The engine uses this to seed the dedup set from a resumed ledger.
func (f *Frontier) MarkSeen(rawURL string) {
	f.seen[rawURL] = true
}

// Seen reports whether a URL was ever admitted to the frontier.
func (f *Frontier) Seen(rawURL string) bool {
	return f.seen[rawURL]
}

// Pending returns a snapshot of the queued entries for checkpointing.
func (f *Frontier) Pending() []model.PendingURL {
	out := make([]model.PendingURL, len(f.queue))
	copy(out, f.queue)
	return out
}
