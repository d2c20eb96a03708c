package model

// PendingURL is a frontier entry that has not yet reached a terminal
// state. Depth is meaningful only for recursively discovered URLs.
type PendingURL struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
	Depth  int    `json:"depth,omitempty"`
	Title  string `json:"title,omitempty"`
}

// CrawlState is the resumable crawl ledger: the set of URLs that have
// reached a terminal state and the set still pending, plus a sequence
// number incremented on every checkpoint.
//
// Invariant: a URL appears in Visited or Pending, never both. The
// engine records a terminal outcome only after it is known; a URL
// dequeued but unresolved at interruption stays pending and is retried
// on resume.
type CrawlState struct {
	// Seq counts checkpoints. Strictly increasing within a run chain.
	Seq int64 `json:"seq"`

	// Visited maps canonical URLs to their terminal record.
	Visited map[string]PageRecord `json:"visited"`

	// Pending holds frontier entries in dequeue order.
	Pending []PendingURL `json:"pending"`
}

// NewCrawlState creates an empty crawl state.
func NewCrawlState() *CrawlState {
	return &CrawlState{
		Visited: make(map[string]PageRecord),
		Pending: make([]PendingURL, 0),
	}
}

// IsTerminal reports whether url already has a terminal outcome.
func (s *CrawlState) IsTerminal(url string) bool {
	_, ok := s.Visited[url]
	return ok
}

// RecordOutcome marks url terminal with the given record and removes it
// from the pending set, preserving the visited/pending disjointness.
func (s *CrawlState) RecordOutcome(url string, rec PageRecord) {
	s.Visited[url] = rec
	for i, p := range s.Pending {
		if p.URL == url {
			s.Pending = append(s.Pending[:i], s.Pending[i+1:]...)
			break
		}
	}
}

// SetPending replaces the pending set. Entries already terminal are
// dropped so the disjointness invariant holds at checkpoint boundaries.
func (s *CrawlState) SetPending(pending []PendingURL) {
	out := make([]PendingURL, 0, len(pending))
	for _, p := range pending {
		if !s.IsTerminal(p.URL) {
			out = append(out, p)
		}
	}
	s.Pending = out
}

// SuccessCount returns the number of visited URLs with OutcomeSuccess.
func (s *CrawlState) SuccessCount() int {
	n := 0
	for _, rec := range s.Visited {
		if rec.Outcome == OutcomeSuccess {
			n++
		}
	}
	return n
}
