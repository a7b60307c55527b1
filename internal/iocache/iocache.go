// Package iocache keeps the decorated reference network of every processed
// HUC in a Badger key-value store, so single branches can be re-run
// without rebuilding the network.
package iocache

import (
	"errors"
	"log/slog"
	"time"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/dgraph-io/badger/v4"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnsys"
)

// Entry is the cached network of a HUC.
type Entry struct {
	HUC string
	// CRS is the EPSG code of reach geometries.
	CRS int
	// Reaches carry level path ids and arbolate sums.
	Reaches  []network.Reach
	StoredAt time.Time
}

// NetworkCache stores Entry values by HUC code.
type NetworkCache struct {
	dir string
	db  *badger.DB
}

// New creates a cache rooted at dir. Existing entries are kept.
func New(dir string) (*NetworkCache, error) {
	if err := gnsys.MakeDir(dir); err != nil {
		slog.Error("Cannot create cache directory", "error", err, "dir", dir)
		return nil, OpenError(dir, err)
	}
	return &NetworkCache{dir: dir}, nil
}

// Open opens the Badger database.
func (c *NetworkCache) Open() error {
	if c.db != nil {
		slog.Warn("Network cache is already open")
		return nil
	}
	options := badger.DefaultOptions(c.dir)
	options.Logger = nil

	db, err := badger.Open(options)
	if err != nil {
		return OpenError(c.dir, err)
	}
	c.db = db
	slog.Debug("Network cache opened", "dir", c.dir)
	return nil
}

// Close closes the Badger database.
func (c *NetworkCache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		slog.Error("Cannot close network cache", "error", err)
		return err
	}
	return nil
}

// Store saves the entry under its HUC, replacing a previous one.
func (c *NetworkCache) Store(e Entry) error {
	if c.db == nil {
		return NotOpenError()
	}
	enc := gnfmt.GNgob{}
	val, err := enc.Encode(e)
	if err != nil {
		return StoreError(e.HUC, err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(e.HUC), val)
	})
	if err != nil {
		return StoreError(e.HUC, err)
	}
	return nil
}

// Get returns the entry of a HUC, or nil if the HUC is not cached.
func (c *NetworkCache) Get(huc string) (*Entry, error) {
	if c.db == nil {
		return nil, NotOpenError()
	}
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(huc))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, StoreError(huc, err)
	}
	if val == nil {
		return nil, nil
	}
	var res Entry
	enc := gnfmt.GNgob{}
	if err = enc.Decode(val, &res); err != nil {
		return nil, StoreError(huc, err)
	}
	return &res, nil
}

// Delete removes the entry of a HUC.
func (c *NetworkCache) Delete(huc string) error {
	if c.db == nil {
		return NotOpenError()
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(huc))
	})
	if err != nil {
		return StoreError(huc, err)
	}
	return nil
}

// HUCs returns the cached HUC codes in key order.
func (c *NetworkCache) HUCs() ([]string, error) {
	if c.db == nil {
		return nil, NotOpenError()
	}
	var res []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			res = append(res, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return res, err
}

// Cleanup closes the database and removes all entries.
func (c *NetworkCache) Cleanup() error {
	if err := c.Close(); err != nil {
		return err
	}
	if err := gnsys.CleanDir(c.dir); err != nil {
		slog.Error("Cannot clean network cache", "error", err, "dir", c.dir)
		return err
	}
	return nil
}
