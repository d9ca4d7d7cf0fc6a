package crawl

// Entry is a queued URL and its link distance from a start URL.
type Entry struct {
	URL   string
	Depth int
}

// Queue is a BFS queue with URL deduplication.
// Entries are appended in non-decreasing depth order.
type Queue struct {
	items   []Entry
	visited map[string]bool
	idx     int // current read position
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{
		visited: make(map[string]bool),
	}
}

// Add enqueues a URL if it hasn't been seen before and reports whether it did.
func (q *Queue) Add(url string, depth int) bool {
	if q.visited[url] {
		return false
	}
	q.visited[url] = true
	q.items = append(q.items, Entry{URL: url, Depth: depth})
	return true
}

// MarkSeen records url as visited without enqueuing it.
func (q *Queue) MarkSeen(url string) {
	q.visited[url] = true
}

// HasNext returns true if there are unprocessed URLs.
func (q *Queue) HasNext() bool {
	return q.idx < len(q.items)
}

// NextLevel returns up to limit pending entries that share the depth of the
// head of the queue and advances past them. limit <= 0 means no limit.
func (q *Queue) NextLevel(limit int) []Entry {
	if !q.HasNext() {
		return nil
	}
	depth := q.items[q.idx].Depth
	start := q.idx
	for q.idx < len(q.items) && q.items[q.idx].Depth == depth {
		if limit > 0 && q.idx-start == limit {
			break
		}
		q.idx++
	}
	return q.items[start:q.idx:q.idx]
}

// Visited returns the total number of unique URLs seen.
func (q *Queue) Visited() int {
	return len(q.visited)
}

// Pending returns the number of queued entries not yet taken.
func (q *Queue) Pending() int {
	return len(q.items) - q.idx
}
