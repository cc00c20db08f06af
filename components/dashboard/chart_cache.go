package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"
)

// RenderCache memoizes rendered chart HTML per canvas.
type RenderCache interface {
	GetOrRender(canvas, key string, render func() (string, error)) (string, error)
}

// ChartCache keeps the last rendered HTML of each canvas. A redraw with the
// same data reuses it; new data overwrites it, so the cache holds at most one
// entry per canvas.
type ChartCache struct {
	mu      sync.Mutex
	entries map[string]chartMemo
	hits    int
}

type chartMemo struct {
	key  string
	html string
}

// NewChartCache builds an empty cache.
func NewChartCache() *ChartCache {
	return &ChartCache{entries: make(map[string]chartMemo)}
}

// GetOrRender returns the memo for canvas when its key matches, otherwise it
// renders and replaces the memo. Render errors leave the memo untouched.
func (c *ChartCache) GetOrRender(canvas, key string, render func() (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if memo, ok := c.entries[canvas]; ok && memo.key == key {
		c.hits++
		return memo.html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.entries[canvas] = chartMemo{key: key, html: html}
	return html, nil
}

// Len reports the number of memoized canvases.
func (c *ChartCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Hits counts renders served from the memo.
func (c *ChartCache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// seriesKey hashes what a chart draws: its binding, theme and data.
func seriesKey(spec ChartSpec, theme string, series ChartSeries) string {
	b, err := json.Marshal(struct {
		Spec   ChartSpec
		Theme  string
		Series ChartSeries
	}{spec, theme, series})
	if err != nil {
		return ""
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
