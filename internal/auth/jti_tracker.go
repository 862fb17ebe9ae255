// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/metrics"
)

// ErrBlacklistClosed indicates the store has been closed.
var ErrBlacklistClosed = errors.New("token blacklist is closed")

// BlacklistEntry is a revoked refresh token, keyed by its JTI.
type BlacklistEntry struct {
	JTI           string    `json:"jti"`
	UserID        int64     `json:"user_id"`
	BlacklistedAt time.Time `json:"blacklisted_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Blacklist stores revoked refresh token JTIs until the tokens expire.
type Blacklist interface {
	// Add stores the entry for ttl. Returns ErrTokenAlreadyBlacklisted if the
	// JTI is already present and not expired.
	Add(ctx context.Context, entry *BlacklistEntry, ttl time.Duration) error

	// Contains reports whether a JTI is currently blacklisted.
	Contains(ctx context.Context, jti string) (bool, error)

	// CleanupExpired removes expired entries and returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	// Size returns the approximate number of entries.
	Size(ctx context.Context) (int, error)

	Close() error
}

// NewBlacklist builds the store selected by cfg.BlacklistStore.
func NewBlacklist(cfg *config.JWTConfig) (Blacklist, error) {
	switch cfg.BlacklistStore {
	case "", "memory":
		return NewMemoryBlacklist(), nil
	case "badger":
		opts := badger.DefaultOptions(cfg.BlacklistPath).WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open blacklist store at %s: %w", cfg.BlacklistPath, err)
		}
		bl := NewBadgerBlacklist(db, "")
		bl.ownsDB = true
		return bl, nil
	default:
		return nil, fmt.Errorf("unknown blacklist store %q", cfg.BlacklistStore)
	}
}

// MemoryBlacklist keeps entries in a map. Entries are lost on restart.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]*BlacklistEntry
	closed  bool
	now     func() time.Time
}

// NewMemoryBlacklist creates an empty in-memory blacklist.
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		entries: make(map[string]*BlacklistEntry),
		now:     time.Now,
	}
}

// Add stores a JTI.
func (b *MemoryBlacklist) Add(ctx context.Context, entry *BlacklistEntry, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBlacklistClosed
	}

	now := b.now()
	if existing, ok := b.entries[entry.JTI]; ok && now.Before(existing.ExpiresAt) {
		return ErrTokenAlreadyBlacklisted
	}

	entry.BlacklistedAt = now
	entry.ExpiresAt = now.Add(ttl)
	b.entries[entry.JTI] = entry

	metrics.BlacklistSize.Set(float64(len(b.entries)))
	return nil
}

// Contains reports whether the JTI is blacklisted.
func (b *MemoryBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return false, ErrBlacklistClosed
	}

	entry, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	return b.now().Before(entry.ExpiresAt), nil
}

// CleanupExpired removes expired entries.
func (b *MemoryBlacklist) CleanupExpired(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrBlacklistClosed
	}

	count := 0
	now := b.now()
	for jti, entry := range b.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(b.entries, jti)
			count++
		}
	}

	metrics.BlacklistCleanups.Add(float64(count))
	metrics.BlacklistSize.Set(float64(len(b.entries)))
	return count, nil
}

// Size returns the number of entries.
func (b *MemoryBlacklist) Size(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, ErrBlacklistClosed
	}
	return len(b.entries), nil
}

// Close closes the blacklist.
func (b *MemoryBlacklist) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.entries = nil
	return nil
}

// BadgerBlacklist persists entries in BadgerDB with native TTLs, so revoked
// tokens stay revoked across restarts.
type BadgerBlacklist struct {
	db     *badger.DB
	prefix []byte
	ownsDB bool

	mu     sync.RWMutex
	closed bool
	now    func() time.Time
}

// NewBadgerBlacklist creates a blacklist on db. The prefix defaults to "blacklist:".
func NewBadgerBlacklist(db *badger.DB, prefix string) *BadgerBlacklist {
	if prefix == "" {
		prefix = "blacklist:"
	}
	return &BadgerBlacklist{
		db:     db,
		prefix: []byte(prefix),
		now:    time.Now,
	}
}

func (b *BadgerBlacklist) makeKey(jti string) []byte {
	key := make([]byte, 0, len(b.prefix)+len(jti))
	key = append(key, b.prefix...)
	return append(key, jti...)
}

func (b *BadgerBlacklist) isClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// Add stores a JTI in one read-write transaction.
func (b *BadgerBlacklist) Add(ctx context.Context, entry *BlacklistEntry, ttl time.Duration) error {
	if b.isClosed() {
		return ErrBlacklistClosed
	}

	key := b.makeKey(entry.JTI)
	err := b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			var existing BlacklistEntry
			if valErr := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); valErr == nil && b.now().Before(existing.ExpiresAt) {
				return ErrTokenAlreadyBlacklisted
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		now := b.now()
		entry.BlacklistedAt = now
		entry.ExpiresAt = now.Add(ttl)

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry(key, data).WithTTL(ttl))
	})
	if errors.Is(err, badger.ErrConflict) {
		// A concurrent Add for the same key committed first.
		err = ErrTokenAlreadyBlacklisted
	}
	if err != nil {
		if !errors.Is(err, ErrTokenAlreadyBlacklisted) {
			logging.Error().Err(err).Str("jti", entry.JTI).Msg("Failed to blacklist token")
		}
		return err
	}

	if size, sizeErr := b.Size(ctx); sizeErr == nil {
		metrics.BlacklistSize.Set(float64(size))
	}
	return nil
}

// Contains reports whether the JTI is blacklisted.
func (b *BadgerBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	if b.isClosed() {
		return false, ErrBlacklistClosed
	}

	var found bool
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.makeKey(jti))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var entry BlacklistEntry
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entry); err != nil {
				return err
			}
			found = b.now().Before(entry.ExpiresAt)
			return nil
		})
	})
	return found, err
}

// CleanupExpired deletes entries past their expiry. Badger drops expired keys
// during compaction; this makes the removal immediate.
func (b *BadgerBlacklist) CleanupExpired(ctx context.Context) (int, error) {
	if b.isClosed() {
		return 0, ErrBlacklistClosed
	}

	count := 0
	now := b.now()
	err := b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.prefix
		it := txn.NewIterator(opts)

		var keysToDelete [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var entry BlacklistEntry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				continue
			}
			if !now.Before(entry.ExpiresAt) {
				keysToDelete = append(keysToDelete, item.KeyCopy(nil))
			}
		}
		it.Close()

		for _, key := range keysToDelete {
			if err := txn.Delete(key); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clean up blacklist: %w", err)
	}

	metrics.BlacklistCleanups.Add(float64(count))
	if size, sizeErr := b.Size(ctx); sizeErr == nil {
		metrics.BlacklistSize.Set(float64(size))
	}
	return count, nil
}

// Size counts keys under the prefix.
func (b *BadgerBlacklist) Size(ctx context.Context) (int, error) {
	if b.isClosed() {
		return 0, ErrBlacklistClosed
	}

	count := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close marks the blacklist closed and closes the database if it was opened by NewBlacklist.
func (b *BadgerBlacklist) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.ownsDB {
		return b.db.Close()
	}
	return nil
}
