package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore() *UserStore {
	return New(zap.NewNop(), ExpPersView, ActiveView, ExpGangView)
}

func TestUserStore_PutGetRoundTrip(t *testing.T) {
	s := newTestStore()
	rec := &Record{UID: 1, Name: "A", ExpPers: 100, Active: 50, ExpGang: 10}
	require.NoError(t, s.Put(rec))

	got, err := s.Get(1)
	require.NoError(t, err)
	require.Equal(t, rec.Name, got.Name)
	require.Equal(t, rec.ExpPers, got.ExpPers)
}

func TestUserStore_PutDuplicateUID(t *testing.T) {
	s := newTestStore()
	rec := &Record{UID: 1, ExpPers: 100}
	require.NoError(t, s.Put(rec))
	err := s.Put(&Record{UID: 1, ExpPers: 1})
	require.ErrorIs(t, err, ErrDuplicateUID)
	require.Equal(t, 1, s.Size())
}

func TestUserStore_EraseRoundTrip(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Put(&Record{UID: 1, ExpPers: 100}))
	require.NoError(t, s.Erase(1))

	_, err := s.Get(1)
	require.ErrorIs(t, err, ErrUnknownUID)

	err = s.Erase(1)
	require.ErrorIs(t, err, ErrUnknownUID)
}

func TestUserStore_RankScenario(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Put(&Record{UID: 1, ExpPers: 100}))
	require.NoError(t, s.Put(&Record{UID: 2, ExpPers: 200}))
	require.NoError(t, s.Put(&Record{UID: 3, ExpPers: 150}))

	r1, err := s.Rank("exp_pers", 1)
	require.NoError(t, err)
	require.Equal(t, 3, r1)

	r2, err := s.Rank("exp_pers", 2)
	require.NoError(t, err)
	require.Equal(t, 1, r2)

	r3, err := s.Rank("exp_pers", 3)
	require.NoError(t, err)
	require.Equal(t, 2, r3)
}

func TestUserStore_RankUnknownView(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Put(&Record{UID: 1, ExpPers: 100}))
	_, err := s.Rank("does_not_exist", 1)
	require.ErrorIs(t, err, ErrUnknownView)
}

func TestUserStore_ModifyConsistency(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Put(&Record{UID: 1, ExpPers: 100, Active: 10, ExpGang: 5}))
	require.NoError(t, s.Put(&Record{UID: 2, ExpPers: 200, Active: 20, ExpGang: 6}))

	require.NoError(t, s.Modify(&Record{UID: 1, ExpPers: 300, Active: 10, ExpGang: 5}))

	rank, err := s.Rank("exp_pers", 1)
	require.NoError(t, err)
	require.Equal(t, 1, rank)

	rank2, err := s.Rank("exp_pers", 2)
	require.NoError(t, err)
	require.Equal(t, 2, rank2)
}

func TestUserStore_ModifyUnknownUID(t *testing.T) {
	s := newTestStore()
	err := s.Modify(&Record{UID: 99, ExpPers: 1})
	require.ErrorIs(t, err, ErrUnknownUID)
}

// TestUserStore_RankInvariants exercises rank-consistency properties across
// a scripted sequence of mutations: ranks stay within [1, size], repeated
// queries are idempotent, strictly greater projected values always rank
// strictly better, rank-1 equals the count of strictly greater values, and
// erase/modify leave the remaining ranks consistent with the new data.
func TestUserStore_RankInvariants(t *testing.T) {
	s := newTestStore()
	users := []*Record{
		{UID: 1, ExpPers: 100, Active: 1, ExpGang: 1},
		{UID: 2, ExpPers: 200, Active: 2, ExpGang: 2},
		{UID: 3, ExpPers: 150, Active: 3, ExpGang: 3},
		{UID: 4, ExpPers: 150, Active: 4, ExpGang: 4},
	}
	for _, u := range users {
		require.NoError(t, s.Put(u))
	}
	require.Equal(t, len(users), s.Size())

	for _, u := range users {
		for _, view := range []string{"exp_pers", "active", "exp_gang"} {
			r, err := s.Rank(view, u.UID)
			require.NoError(t, err)
			require.GreaterOrEqual(t, r, 1)
			require.LessOrEqual(t, r, s.Size())
			r2, err := s.Rank(view, u.UID)
			require.NoError(t, err)
			require.Equal(t, r, r2) // idempotent
		}
	}

	// Strictly greater exp_pers implies strictly smaller rank.
	rUID2, _ := s.Rank("exp_pers", 2) // ExpPers 200, greatest
	rUID1, _ := s.Rank("exp_pers", 1) // ExpPers 100, smallest
	require.Less(t, rUID2, rUID1)

	// rank-1 equals count of strictly greater projected values.
	rUID3, _ := s.Rank("exp_pers", 3) // ExpPers 150
	greater := 0
	for _, u := range users {
		if u.ExpPers > 150 {
			greater++
		}
	}
	require.Equal(t, greater, rUID3-1)

	// Round trip via erase.
	require.NoError(t, s.Erase(4))
	_, err := s.Get(4)
	require.ErrorIs(t, err, ErrUnknownUID)

	// Modify preserves rank consistency with the new tuple.
	require.NoError(t, s.Modify(&Record{UID: 3, ExpPers: 500, Active: 3, ExpGang: 3}))
	r, err := s.Rank("exp_pers", 3)
	require.NoError(t, err)
	require.Equal(t, 1, r)
}

func TestRecord_HybridScores(t *testing.T) {
	r := &Record{ExpPers: 10, Active: 10, ExpGang: 10}
	require.Equal(t, uint32(10), r.HybridA()) // 0.7*10+0.3*10 = 10
	require.Equal(t, uint32(10), r.HybridB()) // 0.3*10+0.3*10+0.4*10 = 10

	// Truncation toward zero, not rounding: 0.7*3 = 2.1 truncates to 2.
	r2 := &Record{ExpPers: 3, Active: 0, ExpGang: 0}
	require.Equal(t, uint32(2), r2.HybridA())
}
