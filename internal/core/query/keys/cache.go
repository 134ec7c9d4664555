// Package keys caches primary key columns per table.
package keys

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/debug"
)

// LookupTimeout bounds a shared primary key lookup.
const LookupTimeout = 30 * time.Second

// ColumnNameField is the metadata column holding a key column's name.
const ColumnNameField = "COLUMN_NAME"

// Lookup fetches the ordered primary key columns of a table.
type Lookup interface {
	PrimaryKeys(ctx context.Context, table domain.Table) ([]string, error)
}

// MetadataSource runs catalog lookups.
type MetadataSource interface {
	Metadata(ctx context.Context, req database.MetadataRequest) ([]domain.Record, error)
}

type metadataLookup struct {
	src MetadataSource
}

// NewMetadataLookup returns a Lookup backed by getPrimaryKeys metadata.
func NewMetadataLookup(src MetadataSource) Lookup {
	return &metadataLookup{src: src}
}

func (l *metadataLookup) PrimaryKeys(ctx context.Context, table domain.Table) ([]string, error) {
	records, err := l.src.Metadata(ctx, database.MetadataRequest{
		Operation: database.GetPrimaryKeys,
		Schema:    table.Schema,
		Table:     table.Name,
	})
	if err != nil {
		return nil, err
	}
	return ColumnNames(records), nil
}

// ColumnNames extracts COLUMN_NAME from getPrimaryKeys rows, in row order.
func ColumnNames(records []domain.Record) []string {
	names := make([]string, 0, len(records))
	for _, rec := range records {
		v, ok := rec.Get(ColumnNameField)
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			names = append(names, s)
		} else {
			names = append(names, fmt.Sprint(v))
		}
	}
	return names
}

// Cache maps canonical table identifiers to key columns. Entries live until
// refreshed; concurrent misses for one table share a single lookup.
type Cache struct {
	lookup Lookup

	mu      sync.RWMutex
	entries map[string][]string
	group   singleflight.Group
}

// NewCache creates an empty cache.
func NewCache(lookup Lookup) *Cache {
	return &Cache{
		lookup:  lookup,
		entries: make(map[string][]string),
	}
}

// Get returns the key columns of table, looking them up on first use.
func (c *Cache) Get(ctx context.Context, table domain.Table) ([]string, error) {
	id := table.String()

	c.mu.RLock()
	keys, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		return clone(keys), nil
	}

	// The shared lookup outlives any one caller's cancellation; each caller
	// still stops waiting when its own context ends.
	ch := c.group.DoChan(id, func() (interface{}, error) {
		c.mu.RLock()
		keys, ok := c.entries[id]
		c.mu.RUnlock()
		if ok {
			return keys, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LookupTimeout)
		defer cancel()
		return c.fetch(lctx, table)
	})

	select {
	case <-ctx.Done():
		return nil, fault.Wrap(fault.PrimaryKeyLookupFailed, ctx.Err(), id)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.([]string)), nil
	}
}

// Refresh looks the key columns up again and overwrites the entry.
func (c *Cache) Refresh(ctx context.Context, table domain.Table) ([]string, error) {
	keys, err := c.fetch(ctx, table)
	if err != nil {
		return nil, err
	}
	return clone(keys), nil
}

// Store overwrites the entry with keys fetched elsewhere.
func (c *Cache) Store(table domain.Table, keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[table.String()] = clone(keys)
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) fetch(ctx context.Context, table domain.Table) ([]string, error) {
	keys, err := c.lookup.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, fault.Wrap(fault.PrimaryKeyLookupFailed, err, table.String())
	}
	debug.Debug("Primary key cached", "table", table.String(), "columns", keys)
	c.Store(table, keys)
	return keys, nil
}

func clone(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}
