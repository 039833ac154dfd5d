package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"go-bom-graph/internal/repository"
)

// ErrSequenceExhausted is returned by Next once the counter has issued the
// largest representable value.
var ErrSequenceExhausted = errors.New("sequence exhausted")

// Counter hands out zero-padded sequential identifiers such as PRT-000042.
// Its value is re-derived from storage on Load and is never lowered, so a
// number is not issued twice even after renames or restarts.
type Counter struct {
	name   string
	prefix string
	width  int
	table  any
	column string

	mu   sync.Mutex
	last int64
}

func NewCounter(name, prefix string, width int, table any, column string) *Counter {
	return &Counter{name: name, prefix: prefix, width: width, table: table, column: column}
}

// Load seeds the counter from the persisted high-water mark and the highest
// numeric suffix found in the backing column.
func (c *Counter) Load(ctx context.Context, store repository.Store) error {
	seqs := store.Sequences()

	stored, err := seqs.Current(ctx, c.name)
	if err != nil {
		return fmt.Errorf("loading sequence %s: %w", c.name, err)
	}
	values, err := seqs.Observed(ctx, c.table, c.column, c.prefix)
	if err != nil {
		return fmt.Errorf("scanning %s values: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = max(c.last, stored)
	for _, v := range values {
		if n, ok := c.Parse(v); ok {
			c.last = max(c.last, n)
		}
	}
	return nil
}

// Next reserves the next value. A reservation whose transaction rolls back is
// simply skipped.
func (c *Counter) Next() (string, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last >= math.MaxInt64 {
		return "", 0, fmt.Errorf("%s: %w", c.name, ErrSequenceExhausted)
	}
	c.last++
	return c.Format(c.last), c.last, nil
}

// Observe advances the counter past value if value is in the counter's format.
func (c *Counter) Observe(value string) (int64, bool) {
	n, ok := c.Parse(value)
	if !ok {
		return 0, false
	}
	c.mu.Lock()
	c.last = max(c.last, n)
	c.mu.Unlock()
	return n, true
}

// Persist records n as issued within the caller's transaction.
func (c *Counter) Persist(ctx context.Context, tx repository.Store, n int64) error {
	if err := tx.Sequences().Advance(ctx, c.name, n); err != nil {
		return fmt.Errorf("advancing sequence %s: %w", c.name, err)
	}
	return nil
}

func (c *Counter) Last() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Counter) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", c.prefix, c.width, n)
}

// Parse extracts the numeric suffix of value. Suffixes at or above
// math.MaxInt64 are not treated as sequence values, so a supplied number can
// never push the counter to its end.
func (c *Counter) Parse(value string) (int64, bool) {
	digits, ok := strings.CutPrefix(value, c.prefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n >= math.MaxInt64 {
		return 0, false
	}
	return n, true
}
