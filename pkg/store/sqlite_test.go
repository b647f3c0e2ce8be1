package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, err := s.Get(ctx, CollectionPayments, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, CollectionPayments, "p1", []byte(`{"amount":20}`)))

	doc, err := s.Get(ctx, CollectionPayments, "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":20}`, string(doc))

	// Upsert overwrites in place.
	require.NoError(t, s.Put(ctx, CollectionPayments, "p1", []byte(`{"amount":40}`)))
	doc, err = s.Get(ctx, CollectionPayments, "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":40}`, string(doc))

	count, err := s.Count(ctx, CollectionPayments)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, s.Delete(ctx, CollectionPayments, "p1"))
	assert.ErrorIs(t, s.Delete(ctx, CollectionPayments, "p1"), ErrNotFound)
}

func TestSQLiteStoreCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.Put(ctx, CollectionSlots, "x", []byte(`slot`)))
	require.NoError(t, s.Put(ctx, CollectionUsers, "x", []byte(`user`)))

	doc, err := s.Get(ctx, CollectionSlots, "x")
	require.NoError(t, err)
	assert.Equal(t, []byte(`slot`), doc)

	docs, err := s.List(ctx, CollectionUsers)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, []byte(`user`), docs[0])
}

func TestSQLiteStoreTxRollback(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	require.NoError(t, s.Put(ctx, CollectionBookings, "b1", []byte(`old`)))

	boom := errors.New("boom")
	err := s.ExecTx(ctx, func(tx Tx) error {
		if err := tx.Put(ctx, CollectionBookings, "b1", []byte(`new`)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	doc, err := s.Get(ctx, CollectionBookings, "b1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`old`), doc)
}

func TestSQLiteStoreTxCommit(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	err := s.ExecTx(ctx, func(tx Tx) error {
		if err := tx.Put(ctx, CollectionBookings, "b1", []byte(`one`)); err != nil {
			return err
		}
		return tx.Put(ctx, CollectionSlots, "s1", []byte(`two`))
	})
	require.NoError(t, err)

	_, err = s.Get(ctx, CollectionBookings, "b1")
	assert.NoError(t, err)
	_, err = s.Get(ctx, CollectionSlots, "s1")
	assert.NoError(t, err)
}
