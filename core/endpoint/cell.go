package endpoint

import (
	"context"
	"net/url"
	"sync"
)

// Cell holds a value that is published at most once.
type Cell struct {
	once sync.Once
	done chan struct{}
	url  *url.URL
}

// NewCell creates an empty cell.
func NewCell() *Cell {
	return &Cell{done: make(chan struct{})}
}

// Set publishes u. It reports false when the cell was already set; the first value is kept.
func (c *Cell) Set(u *url.URL) bool {
	set := false
	c.once.Do(func() {
		c.url = u
		set = true
		close(c.done)
	})
	return set
}

// Done is closed once a value was published.
func (c *Cell) Done() <-chan struct{} {
	return c.done
}

// Get returns the published value, or nil if none.
func (c *Cell) Get() *url.URL {
	select {
	case <-c.done:
		return c.url
	default:
		return nil
	}
}

// Wait blocks until a value is published or ctx is done.
func (c *Cell) Wait(ctx context.Context) (*url.URL, error) {
	select {
	case <-c.done:
		return c.url, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
