package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	paymentserrors "parkfinder/internal/payments/errors"
	"parkfinder/pkg/model"
	"parkfinder/pkg/store"
)

const CollectionName = store.CollectionPayments

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id string) (*model.Payment, error)
	FindByBooking(ctx context.Context, bookingID string) (*model.Payment, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Payment, error)
	FindAll(ctx context.Context) ([]*model.Payment, error)
	Count(ctx context.Context) (int64, error)
	WithTx(tx store.Tx) PaymentRepository
	ExecuteTransaction(ctx context.Context, fn store.TxFunc) error
}

type storePaymentRepository struct {
	st store.Store
	q  store.Querier
}

func NewStorePaymentRepository(st store.Store) PaymentRepository {
	return &storePaymentRepository{st: st, q: st}
}

func (r *storePaymentRepository) WithTx(tx store.Tx) PaymentRepository {
	return &storePaymentRepository{st: r.st, q: tx}
}

func (r *storePaymentRepository) ExecuteTransaction(ctx context.Context, fn store.TxFunc) error {
	return r.st.ExecTx(ctx, fn)
}

func (r *storePaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	doc, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}
	if err := r.q.Put(ctx, CollectionName, payment.ID, doc); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *storePaymentRepository) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	doc, err := r.q.Get(ctx, CollectionName, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, paymentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	var payment model.Payment
	if err := json.Unmarshal(doc, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}
	return &payment, nil
}

func (r *storePaymentRepository) FindByBooking(ctx context.Context, bookingID string) (*model.Payment, error) {
	payments, err := r.findWhere(ctx, func(p *model.Payment) bool { return p.BookingID == bookingID })
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, paymentserrors.ErrNotFound
	}
	return payments[0], nil
}

func (r *storePaymentRepository) FindByUser(ctx context.Context, userID string) ([]*model.Payment, error) {
	return r.findWhere(ctx, func(p *model.Payment) bool { return p.UserID == userID })
}

func (r *storePaymentRepository) FindAll(ctx context.Context) ([]*model.Payment, error) {
	return r.findWhere(ctx, func(*model.Payment) bool { return true })
}

func (r *storePaymentRepository) findWhere(ctx context.Context, match func(*model.Payment) bool) ([]*model.Payment, error) {
	docs, err := r.q.List(ctx, CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*model.Payment, 0, len(docs))
	for _, doc := range docs {
		var payment model.Payment
		if err := json.Unmarshal(doc, &payment); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
		}
		if match(&payment) {
			payments = append(payments, &payment)
		}
	}

	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}

func (r *storePaymentRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.q.Count(ctx, CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}
