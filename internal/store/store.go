package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketItems     = []byte("items")
	bucketProviders = []byte("providers")
)

// IndexStore persists resolved library items so a sync engine can look items up
// by provider id without walking the server again.
// Keys encode ancestry (section:X:item:Y) for cascade invalidation via prefix deletion.
type IndexStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewIndexStore opens the index under baseDir, in a subdirectory per server.
// An empty baseDir keeps the index in memory only.
func NewIndexStore(baseDir, serverURL string) (*IndexStore, error) {
	if baseDir == "" {
		// Memory-only mode (no persistence)
		return &IndexStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseDir
	if serverURL != "" {
		dir = filepath.Join(baseDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "index.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketItems, bucketProviders} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &IndexStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *IndexStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func sectionPrefix(title string) string {
	return "section:" + title + ":item:"
}

func itemKey(section, ratingKey string) string {
	return sectionPrefix(section) + ratingKey
}

func providerKey(provider, id string) string {
	return provider + ":" + id
}

// === Generic helpers ===

func (s *IndexStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *IndexStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *IndexStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

func (s *IndexStore) deletePrefix(bucket []byte, prefix string) {
	s.mu.Lock()
	cachePrefix := string(bucket) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	// Collect first: deleting under a live cursor skips keys
	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		var keys [][]byte
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// scan returns the values stored under prefix, in key order.
func (s *IndexStore) scan(bucket []byte, prefix string) [][]byte {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()

		cachePrefix := string(bucket) + ":" + prefix
		var keys []string
		for k := range s.cache {
			if strings.HasPrefix(k, cachePrefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)

		values := make([][]byte, 0, len(keys))
		for _, k := range keys {
			values = append(values, s.cache[k])
		}
		return values
	}

	var values [][]byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, v := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			values = append(values, append([]byte(nil), v...))
		}
		return nil
	})
	return values
}

// === Sections ===

// SaveSection replaces every record stored for section with records.
func (s *IndexStore) SaveSection(section string, records []Record) error {
	s.InvalidateSection(section)

	for _, r := range records {
		r.Section = section
		key := itemKey(section, r.RatingKey)
		if err := s.set(bucketItems, key, r); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		if err := s.set(bucketProviders, providerKey(r.Provider, r.ID), key); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// GetSection returns the records stored for section, ordered by rating key.
func (s *IndexStore) GetSection(section string) ([]Record, bool) {
	values := s.scan(bucketItems, sectionPrefix(section))
	if len(values) == 0 {
		return nil, false
	}

	records := make([]Record, 0, len(values))
	for _, v := range values {
		var r Record
		if err := json.Unmarshal(v, &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, true
}

// Lookup finds the record indexed under provider and id.
func (s *IndexStore) Lookup(provider, id string) (Record, bool) {
	var key string
	if !s.get(bucketProviders, providerKey(provider, id), &key) {
		return Record{}, false
	}

	var r Record
	if !s.get(bucketItems, key, &r) {
		return Record{}, false
	}
	return r, true
}

// === Invalidation ===

// InvalidateSection wipes a section's records and their provider index entries
func (s *IndexStore) InvalidateSection(section string) {
	if records, ok := s.GetSection(section); ok {
		prefix := sectionPrefix(section)
		for _, r := range records {
			var owner string
			pk := providerKey(r.Provider, r.ID)
			// Another section may have claimed the id since
			if s.get(bucketProviders, pk, &owner) && strings.HasPrefix(owner, prefix) {
				s.delete(bucketProviders, pk)
			}
		}
	}
	s.deletePrefix(bucketItems, sectionPrefix(section))
}

// InvalidateAll wipes the entire index
func (s *IndexStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketItems, bucketProviders} {
			if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
