package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"parkfinder/pkg/model"
	"parkfinder/pkg/store"
)

const (
	CollectionName = store.CollectionSettings

	billingDocID = "billing"
)

// ErrNotFound is returned before any admin has ever saved billing settings.
var ErrNotFound = errors.New("billing settings not found")

type SettingsRepository interface {
	GetBilling(ctx context.Context) (*model.BillingSettings, error)
	PutBilling(ctx context.Context, settings *model.BillingSettings) error
	WithTx(tx store.Tx) SettingsRepository
	ExecuteTransaction(ctx context.Context, fn store.TxFunc) error
}

type storeSettingsRepository struct {
	st store.Store
	q  store.Querier
}

func NewStoreSettingsRepository(st store.Store) SettingsRepository {
	return &storeSettingsRepository{st: st, q: st}
}

func (r *storeSettingsRepository) WithTx(tx store.Tx) SettingsRepository {
	return &storeSettingsRepository{st: r.st, q: tx}
}

func (r *storeSettingsRepository) ExecuteTransaction(ctx context.Context, fn store.TxFunc) error {
	return r.st.ExecTx(ctx, fn)
}

func (r *storeSettingsRepository) GetBilling(ctx context.Context) (*model.BillingSettings, error) {
	doc, err := r.q.Get(ctx, CollectionName, billingDocID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get billing settings: %w", err)
	}

	var settings model.BillingSettings
	if err := json.Unmarshal(doc, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal billing settings: %w", err)
	}
	return &settings, nil
}

func (r *storeSettingsRepository) PutBilling(ctx context.Context, settings *model.BillingSettings) error {
	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal billing settings: %w", err)
	}
	if err := r.q.Put(ctx, CollectionName, billingDocID, doc); err != nil {
		return fmt.Errorf("failed to put billing settings: %w", err)
	}
	return nil
}
