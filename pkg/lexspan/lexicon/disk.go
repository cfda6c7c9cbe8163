package lexicon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/lexspan/pkg/lexspan/internalerr"
	"github.com/cognicore/lexspan/pkg/lexspan/kv"
	"github.com/cognicore/lexspan/pkg/lexspan/metrics"
)

// Key layout inside the kv.Store.
const (
	entryPrefix = "e/"
	metaKey     = "m/meta"
)

// DefaultCacheSize is the number of decoded keys a Disk lexicon caches.
const DefaultCacheSize = 4096

// DiskOptions configures a Disk lexicon.
type DiskOptions struct {
	// CaseSensitive applies to a new store; an existing store keeps the
	// setting it was built with.
	CaseSensitive bool

	// CacheSize bounds the decoded-entry LRU cache. Defaults to DefaultCacheSize.
	CacheSize int

	// RefreshInterval is the minimum time between checks for commits made
	// through other handles. Zero checks before every read; a negative
	// interval never checks after open.
	RefreshInterval time.Duration

	Logger *slog.Logger
}

// Disk is a lexicon persisted in a kv.Store.
//
// Add and AddAll stage entries, then commit once per call. Staged entries
// are visible through this handle immediately and to other handles only
// after the commit succeeds. A failure part way through AddAll leaves the
// entries already added staged but uncommitted; Commit retries them.
//
// Every commit bumps a generation number stored with the metadata. Before a
// read, a handle compares it with the generation it last saw and, when
// another handle has committed since, adopts the stored metadata and drops
// its cache. One writer at a time is assumed: two handles staging the same
// key concurrently overwrite each other.
//
// Size counts stored keys, including keys whose every entry carries a
// constraint this process cannot resolve. Such entries are skipped on read
// with one warning per key.
//
// Read failures cannot be returned through the Lexicon interface: they are
// logged, counted, reported by Err, and the read behaves as a miss.
type Disk struct {
	base
	ds *diskStorage
}

var _ Lexicon = (*Disk)(nil)

type diskStorage struct {
	store   kv.Store
	cache   *lru.Cache[string, []Entry]
	pending map[string][]Entry
	logger  *slog.Logger

	// committed is the stored key count; added counts staged keys that
	// were absent before staging.
	committed int
	added     int

	generation atomic.Uint64
	interval   time.Duration
	lastCheck  atomic.Int64

	// unresolved holds keys already warned about in decode.
	unresolved sync.Map

	errMu sync.Mutex
	err   error
}

// entryRecord is the persisted form of an Entry.
type entryRecord struct {
	Lemma       string  `json:"lemma"`
	Probability float64 `json:"probability"`
	Tag         string  `json:"tag,omitempty"`
	Constraint  string  `json:"constraint,omitempty"`
	TokenLength int     `json:"token_length"`
}

type diskMeta struct {
	CaseSensitive  bool `json:"case_sensitive"`
	Probabilistic  bool `json:"probabilistic"`
	MaxTokenLength int  `json:"max_token_length"`
	MaxLemmaLength int  `json:"max_lemma_length"`
	Size           int  `json:"size"`

	Generation uint64 `json:"generation"`
}

// OpenDisk opens a lexicon over store, loading metadata written by a previous
// commit if there is any.
func OpenDisk(ctx context.Context, store kv.Store, opts DiskOptions) (*Disk, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []Entry](size)
	if err != nil {
		return nil, fmt.Errorf("open disk lexicon: %w", err)
	}

	ds := &diskStorage{
		store:    store,
		cache:    cache,
		pending:  make(map[string][]Entry),
		logger:   logger,
		interval: opts.RefreshInterval,
	}
	d := &Disk{ds: ds}
	d.st = ds
	d.caseSensitive = opts.CaseSensitive

	meta, ok, err := ds.readMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("open disk lexicon: %w", err)
	}
	if ok {
		if meta.CaseSensitive != opts.CaseSensitive {
			logger.Warn("disk lexicon case sensitivity fixed by existing store",
				"requested", opts.CaseSensitive, "stored", meta.CaseSensitive)
		}
		d.caseSensitive = meta.CaseSensitive
		d.probabilistic = meta.Probabilistic
		d.maxTokenLength = meta.MaxTokenLength
		d.maxLemmaLength = meta.MaxLemmaLength
		ds.committed = meta.Size
		ds.generation.Store(meta.Generation)
	}
	ds.lastCheck.Store(time.Now().UnixNano())
	d.refresh = d.syncMeta
	return d, nil
}

// syncMeta adopts metadata committed through another handle, if any.
func (d *Disk) syncMeta() {
	if !d.ds.due() {
		return
	}
	meta, ok, err := d.ds.readMeta(context.Background())
	if err != nil {
		d.ds.fail("get", err)
		return
	}
	if !ok || meta.Generation <= d.ds.generation.Load() {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.adopt(meta)
}

// adopt merges newer stored metadata into the handle and drops the cache,
// which may hold misses for keys committed since. Caller holds d.mu.
func (d *Disk) adopt(meta diskMeta) {
	if meta.Generation <= d.ds.generation.Load() {
		return
	}
	d.probabilistic = d.probabilistic || meta.Probabilistic
	d.maxTokenLength = max(d.maxTokenLength, meta.MaxTokenLength)
	d.maxLemmaLength = max(d.maxLemmaLength, meta.MaxLemmaLength)
	d.ds.committed = meta.Size
	d.ds.generation.Store(meta.Generation)
	d.ds.cache.Purge()
	d.ds.logger.Debug("disk lexicon picked up external commit",
		"generation", meta.Generation, "size", meta.Size)
}

// Add indexes one entry and commits.
func (d *Disk) Add(e Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.add(e); err != nil {
		return err
	}
	return d.commit(context.Background())
}

// AddAll indexes entries in order and commits once. The first invalid entry
// or store failure stops the batch before the commit.
func (d *Disk) AddAll(entries ...Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range entries {
		if err := d.add(e); err != nil {
			return err
		}
	}
	return d.commit(context.Background())
}

// Commit makes staged entries durable and visible to other handles.
func (d *Disk) Commit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commit(ctx)
}

// Pending returns the number of keys staged but not yet committed.
func (d *Disk) Pending() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.ds.pending)
}

// Err returns the first store read failure seen by this handle.
func (d *Disk) Err() error {
	d.ds.errMu.Lock()
	defer d.ds.errMu.Unlock()
	return d.ds.err
}

// Close closes the underlying store. Entries still staged are discarded.
func (d *Disk) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := len(d.ds.pending); n > 0 {
		d.ds.logger.Warn("closing disk lexicon with uncommitted entries", "keys", n)
	}
	return d.ds.store.Close()
}

func (d *Disk) commit(ctx context.Context) error {
	stored, ok, err := d.ds.readMeta(ctx)
	if err != nil {
		return fmt.Errorf("commit disk lexicon: %w", err)
	}
	if ok {
		d.adopt(stored)
	}

	generation := d.ds.generation.Load() + 1
	size := d.ds.committed + d.ds.added
	raw, err := json.Marshal(diskMeta{
		CaseSensitive:  d.caseSensitive,
		Probabilistic:  d.probabilistic,
		MaxTokenLength: d.maxTokenLength,
		MaxLemmaLength: d.maxLemmaLength,
		Size:           size,
		Generation:     generation,
	})
	if err != nil {
		return err
	}
	if err := d.ds.store.Put(ctx, []byte(metaKey), raw); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("put").Inc()
		return fmt.Errorf("commit disk lexicon: %w", err)
	}
	if err := d.ds.store.Commit(ctx); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("commit").Inc()
		return fmt.Errorf("commit disk lexicon: %w", err)
	}

	d.ds.logger.Debug("disk lexicon committed",
		"keys", len(d.ds.pending), "size", size, "generation", generation)
	d.ds.committed, d.ds.added = size, 0
	d.ds.generation.Store(generation)
	d.ds.pending = make(map[string][]Entry)
	d.ds.cache.Purge()
	return nil
}

func (ds *diskStorage) readMeta(ctx context.Context) (diskMeta, bool, error) {
	var meta diskMeta
	raw, ok, err := ds.store.Get(ctx, []byte(metaKey))
	if err != nil {
		return meta, false, fmt.Errorf("%w: %w", internalerr.ErrStoreUnavailable, err)
	}
	if !ok {
		return meta, false, nil
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, false, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, true, nil
}

// due reports whether the refresh interval has elapsed, claiming the check
// when it has.
func (ds *diskStorage) due() bool {
	switch {
	case ds.interval < 0:
		return false
	case ds.interval == 0:
		return true
	}
	now := time.Now().UnixNano()
	last := ds.lastCheck.Load()
	if now-last < int64(ds.interval) {
		return false
	}
	return ds.lastCheck.CompareAndSwap(last, now)
}

func (ds *diskStorage) fail(op string, err error) {
	metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
	ds.logger.Error("disk lexicon store failure", "op", op, "error", err)

	ds.errMu.Lock()
	if ds.err == nil {
		ds.err = fmt.Errorf("disk lexicon %s: %w", op, err)
	}
	ds.errMu.Unlock()
}

func (ds *diskStorage) load(key string) ([]Entry, error) {
	if es, ok := ds.pending[key]; ok {
		return slices.Clone(es), nil
	}
	if es, ok := ds.cache.Get(key); ok {
		return slices.Clone(es), nil
	}

	raw, ok, err := ds.store.Get(context.Background(), []byte(entryPrefix+key))
	if err != nil {
		return nil, err
	}
	var es []Entry
	if ok {
		es = ds.decode(key, raw)
	}
	ds.cache.Add(key, es)
	return slices.Clone(es), nil
}

func (ds *diskStorage) lookup(key string) []Entry {
	es, err := ds.load(key)
	if err != nil {
		ds.fail("get", err)
		return nil
	}
	return es
}

func (ds *diskStorage) insert(key string, e Entry) error {
	if e.Constraint != nil {
		if _, err := ParseConstraint(e.Constraint.String()); err != nil {
			return fmt.Errorf("lexicon entry %q: constraint not persistable: %w", key, err)
		}
	}

	cur, err := ds.load(key)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("get").Inc()
		return fmt.Errorf("disk lexicon get %q: %w", key, err)
	}
	next := append(cur, e)

	raw, err := encode(next)
	if err != nil {
		return err
	}
	if err := ds.store.Put(context.Background(), []byte(entryPrefix+key), raw); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("put").Inc()
		return fmt.Errorf("disk lexicon put %q: %w", key, err)
	}

	if len(cur) == 0 {
		ds.added++
	}
	ds.pending[key] = next
	return nil
}

func (ds *diskStorage) hasPrefix(key string) bool {
	for k := range ds.pending {
		if strings.HasPrefix(k, key) {
			return true
		}
	}

	found := false
	err := kv.ScanPrefix(context.Background(), ds.store, []byte(entryPrefix+key), func(_, _ []byte) bool {
		found = true
		return false
	})
	if err != nil {
		ds.fail("seek", err)
		return false
	}
	return found
}

func (ds *diskStorage) keys() []string {
	var out []string
	err := kv.ScanPrefix(context.Background(), ds.store, []byte(entryPrefix), func(k, _ []byte) bool {
		out = append(out, string(k[len(entryPrefix):]))
		return true
	})
	if err != nil {
		ds.fail("seek", err)
	}
	for k := range ds.pending {
		out = append(out, k)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (ds *diskStorage) size() int { return ds.committed + ds.added }

func encode(entries []Entry) ([]byte, error) {
	recs := make([]entryRecord, len(entries))
	for i, e := range entries {
		recs[i] = entryRecord{
			Lemma:       e.Lemma,
			Probability: e.Probability,
			Tag:         e.Tag,
			TokenLength: e.TokenLength,
		}
		if e.Constraint != nil {
			recs[i].Constraint = e.Constraint.String()
		}
	}
	return json.Marshal(recs)
}

// decode skips records whose constraint no longer resolves, e.g. a custom
// constraint that was not registered in this process.
func (ds *diskStorage) decode(key string, raw []byte) []Entry {
	var recs []entryRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		ds.fail("decode", err)
		return nil
	}

	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		c, err := ParseConstraint(r.Constraint)
		if err != nil {
			if _, warned := ds.unresolved.LoadOrStore(key, struct{}{}); !warned {
				ds.logger.Warn("skipping lexicon entry with unresolvable constraint; size still counts the key",
					"key", key, "constraint", r.Constraint, "error", err)
			}
			continue
		}
		out = append(out, Entry{
			Lemma:       r.Lemma,
			Probability: r.Probability,
			Tag:         r.Tag,
			Constraint:  c,
			TokenLength: r.TokenLength,
		})
	}
	return out
}
