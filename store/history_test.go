package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	first, err := s.Record(Generation{
		Payload:   "https://leg-work.vercel.app/",
		Path:      "qrcodes/leg-work_qr.png",
		SHA256:    "aa",
		Size:      512,
		CreatedAt: base,
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	second, err := s.Record(Generation{
		Payload:   "https://leg-work.vercel.app/dashboard",
		Path:      "qrcodes/dashboard.png",
		SHA256:    "bb",
		Size:      640,
		CreatedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)

	gens, err := s.List(10)
	require.NoError(t, err)
	require.Len(t, gens, 2)
	assert.Equal(t, second.ID, gens[0].ID)
	assert.Equal(t, first.ID, gens[1].ID)
	assert.Equal(t, "qrcodes/leg-work_qr.png", gens[1].Path)
	assert.Equal(t, int64(512), gens[1].Size)
	assert.True(t, base.Equal(gens[1].CreatedAt))
}

func TestList_Limit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.Record(Generation{Payload: "p", Path: "x.png", SHA256: "cc"})
		require.NoError(t, err)
	}

	gens, err := s.List(3)
	require.NoError(t, err)
	assert.Len(t, gens, 3)
}

func TestRecord_DefaultsCreatedAt(t *testing.T) {
	s := newTestStore(t)
	before := time.Now()

	g, err := s.Record(Generation{Payload: "p", Path: "x.png", SHA256: "dd"})
	require.NoError(t, err)
	assert.False(t, g.CreatedAt.Before(before))
}

func TestList_Empty(t *testing.T) {
	gens, err := newTestStore(t).List(10)
	require.NoError(t, err)
	assert.Empty(t, gens)
}
