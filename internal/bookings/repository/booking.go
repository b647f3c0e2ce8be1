package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	bookingserrors "parkfinder/internal/bookings/errors"
	"parkfinder/pkg/model"
	"parkfinder/pkg/store"
)

const CollectionName = store.CollectionBookings

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context) ([]*model.Booking, error)
	FindActive(ctx context.Context) ([]*model.Booking, error)
	FindActiveByUser(ctx context.Context, userID string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	Update(ctx context.Context, booking *model.Booking) error
	Count(ctx context.Context) (int64, error)
	WithTx(tx store.Tx) BookingRepository
	ExecuteTransaction(ctx context.Context, fn store.TxFunc) error
}

type storeBookingRepository struct {
	st store.Store
	q  store.Querier
}

func NewStoreBookingRepository(st store.Store) BookingRepository {
	return &storeBookingRepository{st: st, q: st}
}

func (r *storeBookingRepository) WithTx(tx store.Tx) BookingRepository {
	return &storeBookingRepository{st: r.st, q: tx}
}

func (r *storeBookingRepository) ExecuteTransaction(ctx context.Context, fn store.TxFunc) error {
	return r.st.ExecTx(ctx, fn)
}

func (r *storeBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	doc, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to marshal booking: %w", err)
	}
	if err := r.q.Put(ctx, CollectionName, booking.ID, doc); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *storeBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	doc, err := r.q.Get(ctx, CollectionName, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	var booking model.Booking
	if err := json.Unmarshal(doc, &booking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking: %w", err)
	}
	return &booking, nil
}

func (r *storeBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	return r.findWhere(ctx, func(*model.Booking) bool { return true })
}

func (r *storeBookingRepository) FindActive(ctx context.Context) ([]*model.Booking, error) {
	return r.findWhere(ctx, func(b *model.Booking) bool { return b.IsActive() })
}

// FindActiveByUser returns the user's single active booking, or ErrNotFound.
func (r *storeBookingRepository) FindActiveByUser(ctx context.Context, userID string) (*model.Booking, error) {
	bookings, err := r.findWhere(ctx, func(b *model.Booking) bool {
		return b.IsActive() && b.UserID == userID
	})
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return bookings[0], nil
}

func (r *storeBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return r.findWhere(ctx, func(b *model.Booking) bool { return b.UserID == userID })
}

func (r *storeBookingRepository) findWhere(ctx context.Context, match func(*model.Booking) bool) ([]*model.Booking, error) {
	docs, err := r.q.List(ctx, CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*model.Booking, 0, len(docs))
	for _, doc := range docs {
		var booking model.Booking
		if err := json.Unmarshal(doc, &booking); err != nil {
			return nil, fmt.Errorf("failed to unmarshal booking: %w", err)
		}
		if match(&booking) {
			bookings = append(bookings, &booking)
		}
	}

	// Newest first, the order every listing screen wants.
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}

func (r *storeBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	if _, err := r.FindByID(ctx, booking.ID); err != nil {
		return err
	}

	doc, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to marshal booking: %w", err)
	}
	if err := r.q.Put(ctx, CollectionName, booking.ID, doc); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

func (r *storeBookingRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.q.Count(ctx, CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}
