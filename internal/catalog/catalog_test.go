package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ewah/ewah"
	"ewah/internal/common"
)

func init() {
	common.LoggingEnabled = false
}

func sample(t *testing.T, positions ...uint64) *ewah.Bitmap {
	t.Helper()
	b := ewah.New()
	for _, p := range positions {
		require.NoError(t, b.Set(p))
	}
	return b
}

func requireNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	leftover, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	require.Empty(t, leftover)
}

func TestOpenEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bitmaps")
	c, err := Open(dir)
	require.NoError(t, err)
	require.Empty(t, c.Current().Entries)
	require.DirExists(t, dir)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	require.NoError(t, err)

	b := sample(t, 1, 70, 5000)
	entry, err := c.Save("evens", b)
	require.NoError(t, err)
	require.Equal(t, "evens.ewah", entry.File)
	require.Equal(t, uint64(3), entry.Cardinality)
	require.Equal(t, uint64(5001), entry.SizeInBits)
	require.FileExists(t, filepath.Join(dir, "evens.ewah"))
	requireNoTempFiles(t, dir)

	loaded, err := c.Load("evens")
	require.NoError(t, err)
	require.Equal(t, b.Positions(), loaded.Positions())

	// Reopening reads the flushed catalog.
	c2, err := Open(dir)
	require.NoError(t, err)
	got, ok := c2.Current().Lookup("evens")
	require.True(t, ok)
	require.Equal(t, entry.Cardinality, got.Cardinality)
	require.True(t, entry.SavedAt.Equal(got.SavedAt))
}

func TestSaveReplacesAndSorts(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"b", "c", "a"} {
		_, err := c.Save(name, sample(t, 1))
		require.NoError(t, err)
	}
	_, err = c.Save("b", sample(t, 1, 2, 3))
	require.NoError(t, err)

	v := c.Current()
	require.Len(t, v.Entries, 3)
	require.Equal(t, "a", v.Entries[0].Name)
	require.Equal(t, "b", v.Entries[1].Name)
	require.Equal(t, "c", v.Entries[2].Name)
	require.Equal(t, uint64(3), v.Entries[1].Cardinality)
}

func TestSnapshotIsolation(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	_, err = c.Save("a", sample(t, 1))
	require.NoError(t, err)

	before := c.Current()
	_, err = c.Save("b", sample(t, 2))
	require.NoError(t, err)
	require.Len(t, before.Entries, 1)
	require.Len(t, c.Current().Entries, 2)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	require.NoError(t, err)
	_, err = c.Save("gone", sample(t, 9))
	require.NoError(t, err)

	require.NoError(t, c.Remove("gone"))
	require.NoFileExists(t, filepath.Join(dir, "gone.ewah"))
	_, ok := c.Current().Lookup("gone")
	require.False(t, ok)

	require.ErrorIs(t, c.Remove("gone"), ErrNotFound)
	_, err = c.Load("gone")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidName(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "../x", "a b", "x/y"} {
		_, err := c.Save(name, sample(t))
		require.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestReadWriteCatalog(t *testing.T) {
	v := &Version{Entries: []Entry{
		{Name: "z", File: "z.ewah", SizeInBits: 10},
		{Name: "m", File: "m.ewah", Cardinality: 4},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, v))

	got, err := ReadCatalog(&buf)
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	require.Equal(t, "m", got.Entries[0].Name)
	require.Equal(t, uint64(4), got.Entries[0].Cardinality)
	require.Equal(t, "z", got.Entries[1].Name)
}

func TestOpenCorruptCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, catalogFile), []byte("{"), 0o644))
	_, err := Open(dir)
	require.Error(t, err)
}

func TestConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	require.NoError(t, err)

	const n = 16
	bitmaps := make([]*ewah.Bitmap, n)
	for i := range bitmaps {
		bitmaps[i] = sample(t, uint64(i), uint64(100+i))
	}
	shared := sample(t, 7)

	var wg sync.WaitGroup
	errs := make([]error, n+4)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Save(fmt.Sprintf("b%02d", i), bitmaps[i])
		}(i)
	}
	// Overlapping writes to the same bitmap file.
	for i := n; i < n+4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Save("shared", shared.Clone())
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	requireNoTempFiles(t, dir)

	reopened, err := Open(dir)
	require.NoError(t, err)
	require.Len(t, reopened.Current().Entries, n+1)
	for i := 0; i < n; i++ {
		b, err := reopened.Load(fmt.Sprintf("b%02d", i))
		require.NoError(t, err)
		require.Equal(t, []uint64{uint64(i), uint64(100 + i)}, b.Positions())
	}
	got, err := reopened.Load("shared")
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, got.Positions())
}
