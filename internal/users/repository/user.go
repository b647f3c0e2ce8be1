package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	userserrors "parkfinder/internal/users/errors"
	"parkfinder/pkg/model"
	"parkfinder/pkg/store"
)

const CollectionName = store.CollectionUsers

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int64, error)
	WithTx(tx store.Tx) UserRepository
	ExecuteTransaction(ctx context.Context, fn store.TxFunc) error
}

type storeUserRepository struct {
	st store.Store
	q  store.Querier
}

func NewStoreUserRepository(st store.Store) UserRepository {
	return &storeUserRepository{st: st, q: st}
}

func (r *storeUserRepository) WithTx(tx store.Tx) UserRepository {
	return &storeUserRepository{st: r.st, q: tx}
}

func (r *storeUserRepository) ExecuteTransaction(ctx context.Context, fn store.TxFunc) error {
	return r.st.ExecTx(ctx, fn)
}

func (r *storeUserRepository) Create(ctx context.Context, user *model.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := r.q.Put(ctx, CollectionName, user.ID, doc); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *storeUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	doc, err := r.q.Get(ctx, CollectionName, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, userserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(doc, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

func (r *storeUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	users, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (r *storeUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (r *storeUserRepository) FindAll(ctx context.Context) ([]*model.User, error) {
	docs, err := r.q.List(ctx, CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*model.User, 0, len(docs))
	for _, doc := range docs {
		var user model.User
		if err := json.Unmarshal(doc, &user); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user: %w", err)
		}
		users = append(users, &user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *storeUserRepository) Update(ctx context.Context, user *model.User) error {
	if _, err := r.FindByID(ctx, user.ID); err != nil {
		return err
	}

	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := r.q.Put(ctx, CollectionName, user.ID, doc); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *storeUserRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.q.Count(ctx, CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
