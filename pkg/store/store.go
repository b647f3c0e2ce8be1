// Package store provides the persistent document store backing every entity
// collection. It deliberately mirrors a browser's key-value storage: each
// collection holds JSON documents addressed by id, and the only query
// primitives are get, list, put and delete. Repositories layer typed access
// on top.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document id does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// Collection names used across the system.
const (
	CollectionSlots    = "slots"
	CollectionBookings = "bookings"
	CollectionPayments = "payments"
	CollectionUsers    = "users"
	CollectionIssues   = "issues"
	CollectionFeedback = "feedback"
	CollectionSettings = "settings"
)

// Querier is the read/write surface shared by the store itself and an open
// transaction.
type Querier interface {
	Get(ctx context.Context, collection, id string) ([]byte, error)
	List(ctx context.Context, collection string) ([][]byte, error)
	Count(ctx context.Context, collection string) (int64, error)
	Put(ctx context.Context, collection, id string, doc []byte) error
	Delete(ctx context.Context, collection, id string) error
}

// Tx is a transaction handle. All writes made through it become visible
// atomically on commit; any error from fn rolls everything back, so a failed
// command never leaves partial state behind.
type Tx interface {
	Querier
}

type TxFunc func(tx Tx) error

// Store is the full store contract. ExecTx runs fn inside a single
// transaction spanning every collection touched within it.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
	Close() error
}
