package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"ewah/ewah"
	"ewah/internal/common"
)

const (
	catalogFile = "CATALOG"
	bitmapExt   = ".ewah"
)

var (
	// ErrNotFound is returned when a name has no catalog entry.
	ErrNotFound = errors.New("catalog: bitmap not found")

	// ErrInvalidName is returned for names that cannot be used as file names.
	ErrInvalidName = errors.New("catalog: invalid bitmap name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Entry records one saved bitmap.
type Entry struct {
	Name        string    `json:"name"`
	File        string    `json:"file"`
	SizeInBits  uint64    `json:"sizeInBits"`
	SizeInBytes int       `json:"sizeInBytes"`
	Cardinality uint64    `json:"cardinality"`
	SavedAt     time.Time `json:"savedAt"`
}

// Version is an immutable snapshot of the catalog.
type Version struct {
	// Entries sorted by name.
	Entries []Entry `json:"entries"`
}

// Lookup returns the entry for name.
func (v *Version) Lookup(name string) (Entry, bool) {
	i, ok := slices.BinarySearchFunc(v.Entries, name, func(e Entry, name string) int {
		return strings.Compare(e.Name, name)
	})
	if !ok {
		return Entry{}, false
	}
	return v.Entries[i], true
}

// Catalog is a directory of serialized bitmaps indexed by a CATALOG file.
type Catalog struct {
	mu      sync.RWMutex
	dir     string
	current *Version

	// flushMu orders CATALOG writes so the file never regresses to an
	// older version.
	flushMu sync.Mutex
}

// Open opens the catalog in dir, creating the directory if needed.
func Open(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	c := &Catalog{dir: dir, current: &Version{}}
	f, err := os.Open(filepath.Join(dir, catalogFile))
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	v, err := ReadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", catalogFile, err)
	}
	c.current = v
	return c, nil
}

// Dir returns the catalog directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Current returns a snapshot of the current version for reading.
func (c *Catalog) Current() *Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Save writes b under name, replacing any previous bitmap of that name, and
// flushes the catalog.
func (c *Catalog) Save(name string, b *ewah.Bitmap) (Entry, error) {
	if !validName.MatchString(name) {
		return Entry{}, fmt.Errorf("%q: %w", name, ErrInvalidName)
	}

	start := time.Now()
	entry := Entry{
		Name:        name,
		File:        name + bitmapExt,
		SizeInBits:  b.SizeInBits(),
		SizeInBytes: b.SizeInBytes(),
		Cardinality: b.Cardinality(),
		SavedAt:     time.Now().UTC(),
	}
	if err := WriteFile(filepath.Join(c.dir, entry.File), b); err != nil {
		return Entry{}, err
	}

	c.mu.Lock()
	v := c.deepCopy(c.current)
	i, found := slices.BinarySearchFunc(v.Entries, name, func(e Entry, name string) int {
		return strings.Compare(e.Name, name)
	})
	if found {
		v.Entries[i] = entry
	} else {
		v.Entries = slices.Insert(v.Entries, i, entry)
	}
	c.current = v
	c.mu.Unlock()

	if err := c.Flush(); err != nil {
		return Entry{}, err
	}
	common.LogDuration(start, "saved %s (%d bits, %d bytes)", name, entry.SizeInBits, entry.SizeInBytes)
	return entry, nil
}

// Load reads the bitmap saved under name.
func (c *Catalog) Load(name string) (*ewah.Bitmap, error) {
	entry, ok := c.Current().Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	start := time.Now()
	b, err := ReadFile(filepath.Join(c.dir, entry.File))
	if err != nil {
		return nil, err
	}
	common.LogDuration(start, "loaded %s (%d bits)", name, b.SizeInBits())
	return b, nil
}

// Remove deletes the bitmap saved under name and flushes the catalog.
func (c *Catalog) Remove(name string) error {
	c.mu.Lock()
	v := c.deepCopy(c.current)
	i, found := slices.BinarySearchFunc(v.Entries, name, func(e Entry, name string) int {
		return strings.Compare(e.Name, name)
	})
	if !found {
		c.mu.Unlock()
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	file := v.Entries[i].File
	v.Entries = slices.Delete(v.Entries, i, i+1)
	c.current = v
	c.mu.Unlock()

	if err := c.Flush(); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(c.dir, file)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Catalog) deepCopy(v *Version) *Version {
	return &Version{Entries: slices.Clone(v.Entries)}
}

// WriteCatalog serializes a Version to JSON.
func WriteCatalog(w io.Writer, v *Version) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// ReadCatalog deserializes a Version from JSON.
func ReadCatalog(r io.Reader) (*Version, error) {
	var v Version
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, err
	}
	slices.SortFunc(v.Entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return &v, nil
}

// Flush atomically writes the current version to the CATALOG file.
func (c *Catalog) Flush() error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	v := c.Current()
	return writeAtomic(filepath.Join(c.dir, catalogFile), func(w io.Writer) error {
		return WriteCatalog(w, v)
	})
}

// writeAtomic writes to a uniquely named temporary file next to path and
// renames it into place once the contents are synced.
func writeAtomic(path string, write func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpPath := f.Name()

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
