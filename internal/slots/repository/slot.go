package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	slotserrors "parkfinder/internal/slots/errors"
	"parkfinder/pkg/model"
	"parkfinder/pkg/store"
)

const CollectionName = store.CollectionSlots

type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	FindAll(ctx context.Context) ([]*model.Slot, error)
	Update(ctx context.Context, slot *model.Slot) error
	Count(ctx context.Context) (int64, error)
	WithTx(tx store.Tx) SlotRepository
	ExecuteTransaction(ctx context.Context, fn store.TxFunc) error
}

type storeSlotRepository struct {
	st store.Store
	q  store.Querier
}

func NewStoreSlotRepository(st store.Store) SlotRepository {
	return &storeSlotRepository{st: st, q: st}
}

// WithTx returns a view of the repository bound to an open transaction.
func (r *storeSlotRepository) WithTx(tx store.Tx) SlotRepository {
	return &storeSlotRepository{st: r.st, q: tx}
}

func (r *storeSlotRepository) ExecuteTransaction(ctx context.Context, fn store.TxFunc) error {
	return r.st.ExecTx(ctx, fn)
}

func (r *storeSlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	doc, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("failed to marshal slot: %w", err)
	}
	if err := r.q.Put(ctx, CollectionName, slot.ID, doc); err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

func (r *storeSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	doc, err := r.q.Get(ctx, CollectionName, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, slotserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	var slot model.Slot
	if err := json.Unmarshal(doc, &slot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal slot: %w", err)
	}
	return &slot, nil
}

func (r *storeSlotRepository) FindAll(ctx context.Context) ([]*model.Slot, error) {
	docs, err := r.q.List(ctx, CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	slots := make([]*model.Slot, 0, len(docs))
	for _, doc := range docs {
		var slot model.Slot
		if err := json.Unmarshal(doc, &slot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Number < slots[j].Number })
	return slots, nil
}

func (r *storeSlotRepository) Update(ctx context.Context, slot *model.Slot) error {
	if _, err := r.FindByID(ctx, slot.ID); err != nil {
		return err
	}

	doc, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("failed to marshal slot: %w", err)
	}
	if err := r.q.Put(ctx, CollectionName, slot.ID, doc); err != nil {
		return fmt.Errorf("failed to update slot: %w", err)
	}
	return nil
}

func (r *storeSlotRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.q.Count(ctx, CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	return count, nil
}
