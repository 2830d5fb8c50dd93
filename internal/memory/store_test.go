package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

func newTestStore(t *testing.T) (*Store[record], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	return NewStore[record](path), path
}

func TestStoreAppendPersists(t *testing.T) {
	s, path := newTestStore(t)
	s.Append(record{ID: "a", Value: 1})
	s.Append(record{ID: "b", Value: 2})

	reloaded := NewStore[record](path)
	assert.Equal(t, 2, reloaded.Size())
	got, ok := reloaded.Find(func(r record) bool { return r.ID == "b" })
	require.True(t, ok)
	assert.Equal(t, 2, got.Value)
}

func TestStoreMissingFileStartsEmpty(t *testing.T) {
	s := NewStore[record](filepath.Join(t.TempDir(), "absent.json"))
	assert.Zero(t, s.Size())
}

func TestStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewStore[record](path)
	assert.Zero(t, s.Size())

	// Still usable after the bad load.
	s.Append(record{ID: "a"})
	assert.Equal(t, 1, s.Size())
}

func TestStoreUpsert(t *testing.T) {
	s, _ := newTestStore(t)

	stored, updated := s.Upsert(
		func(r record) bool { return r.ID == "a" },
		func(r record) record { r.Value++; return r },
		record{ID: "a", Value: 1},
	)
	assert.False(t, updated)
	assert.Equal(t, 1, stored.Value)

	stored, updated = s.Upsert(
		func(r record) bool { return r.ID == "a" },
		func(r record) record { r.Value++; return r },
		record{ID: "a", Value: 1},
	)
	assert.True(t, updated)
	assert.Equal(t, 2, stored.Value)

	got, _ := s.Find(func(r record) bool { return r.ID == "a" })
	assert.Equal(t, 2, got.Value)
	assert.Equal(t, 1, s.Size())
}

func TestStoreRemove(t *testing.T) {
	s, _ := newTestStore(t)
	s.Append(record{ID: "a", Value: 1})
	s.Append(record{ID: "b", Value: 2})
	s.Append(record{ID: "c", Value: 1})

	removed := s.Remove(func(r record) bool { return r.Value == 1 })
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, s.Size())
}

func TestStoreSelectOrder(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 1; i <= 5; i++ {
		s.Append(record{ID: string(rune('a' + i - 1)), Value: i})
	}

	got := s.Select(Query[record]{
		Filter: func(r record) bool { return r.Value != 3 },
		Sort:   func(a, b record) bool { return a.Value > b.Value },
		Offset: 1,
		Limit:  2,
	})

	// Filtered {5,4,2,1} sorted desc, skip one, take two.
	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].Value)
	assert.Equal(t, 2, got[1].Value)
}

func TestStoreSelectOffsetPastEnd(t *testing.T) {
	s, _ := newTestStore(t)
	s.Append(record{ID: "a"})
	assert.Empty(t, s.Select(Query[record]{Offset: 10}))
}

func TestStoreGetAllReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	s.Append(record{ID: "a", Value: 1})

	all := s.GetAll()
	all[0].Value = 99

	got, _ := s.Find(func(r record) bool { return r.ID == "a" })
	assert.Equal(t, 1, got.Value)
}

func TestStoreClearAndReload(t *testing.T) {
	s, path := newTestStore(t)
	s.Append(record{ID: "a"})
	s.Clear()
	assert.Zero(t, s.Size())

	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x","value":7}]`), 0o644))
	require.NoError(t, s.Reload())
	assert.Equal(t, 1, s.Size())
}

func TestStoreEventsNonBlocking(t *testing.T) {
	s, _ := newTestStore(t)

	// Nobody drains the channel; mutations must not block.
	for i := 0; i < 200; i++ {
		s.Append(record{ID: "a", Value: i})
	}

	ev := <-s.Events()
	assert.Equal(t, EventAppend, ev.Kind)
}
