package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	issueserrors "parkfinder/internal/issues/errors"
	"parkfinder/pkg/model"
	"parkfinder/pkg/store"
)

const (
	IssueCollection    = store.CollectionIssues
	FeedbackCollection = store.CollectionFeedback
)

type IssueRepository interface {
	CreateIssue(ctx context.Context, issue *model.Issue) error
	FindIssueByID(ctx context.Context, id string) (*model.Issue, error)
	FindAllIssues(ctx context.Context) ([]*model.Issue, error)
	UpdateIssue(ctx context.Context, issue *model.Issue) error

	CreateFeedback(ctx context.Context, feedback *model.Feedback) error
	FindFeedbackByID(ctx context.Context, id string) (*model.Feedback, error)
	FindAllFeedback(ctx context.Context) ([]*model.Feedback, error)
	UpdateFeedback(ctx context.Context, feedback *model.Feedback) error

	WithTx(tx store.Tx) IssueRepository
	ExecuteTransaction(ctx context.Context, fn store.TxFunc) error
}

type storeIssueRepository struct {
	st store.Store
	q  store.Querier
}

func NewStoreIssueRepository(st store.Store) IssueRepository {
	return &storeIssueRepository{st: st, q: st}
}

func (r *storeIssueRepository) WithTx(tx store.Tx) IssueRepository {
	return &storeIssueRepository{st: r.st, q: tx}
}

func (r *storeIssueRepository) ExecuteTransaction(ctx context.Context, fn store.TxFunc) error {
	return r.st.ExecTx(ctx, fn)
}

func (r *storeIssueRepository) CreateIssue(ctx context.Context, issue *model.Issue) error {
	doc, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("failed to marshal issue: %w", err)
	}
	if err := r.q.Put(ctx, IssueCollection, issue.ID, doc); err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}
	return nil
}

func (r *storeIssueRepository) FindIssueByID(ctx context.Context, id string) (*model.Issue, error) {
	doc, err := r.q.Get(ctx, IssueCollection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, issueserrors.ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}

	var issue model.Issue
	if err := json.Unmarshal(doc, &issue); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issue: %w", err)
	}
	return &issue, nil
}

func (r *storeIssueRepository) FindAllIssues(ctx context.Context) ([]*model.Issue, error) {
	docs, err := r.q.List(ctx, IssueCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}

	issues := make([]*model.Issue, 0, len(docs))
	for _, doc := range docs {
		var issue model.Issue
		if err := json.Unmarshal(doc, &issue); err != nil {
			return nil, fmt.Errorf("failed to unmarshal issue: %w", err)
		}
		issues = append(issues, &issue)
	}

	sort.Slice(issues, func(i, j int) bool {
		return issues[i].CreatedAt.After(issues[j].CreatedAt)
	})
	return issues, nil
}

func (r *storeIssueRepository) UpdateIssue(ctx context.Context, issue *model.Issue) error {
	if _, err := r.FindIssueByID(ctx, issue.ID); err != nil {
		return err
	}

	doc, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("failed to marshal issue: %w", err)
	}
	if err := r.q.Put(ctx, IssueCollection, issue.ID, doc); err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}
	return nil
}

func (r *storeIssueRepository) CreateFeedback(ctx context.Context, feedback *model.Feedback) error {
	doc, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}
	if err := r.q.Put(ctx, FeedbackCollection, feedback.ID, doc); err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (r *storeIssueRepository) FindFeedbackByID(ctx context.Context, id string) (*model.Feedback, error) {
	doc, err := r.q.Get(ctx, FeedbackCollection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, issueserrors.ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to find feedback: %w", err)
	}

	var feedback model.Feedback
	if err := json.Unmarshal(doc, &feedback); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
	}
	return &feedback, nil
}

func (r *storeIssueRepository) FindAllFeedback(ctx context.Context) ([]*model.Feedback, error) {
	docs, err := r.q.List(ctx, FeedbackCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	entries := make([]*model.Feedback, 0, len(docs))
	for _, doc := range docs {
		var feedback model.Feedback
		if err := json.Unmarshal(doc, &feedback); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
		}
		entries = append(entries, &feedback)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (r *storeIssueRepository) UpdateFeedback(ctx context.Context, feedback *model.Feedback) error {
	if _, err := r.FindFeedbackByID(ctx, feedback.ID); err != nil {
		return err
	}

	doc, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}
	if err := r.q.Put(ctx, FeedbackCollection, feedback.ID, doc); err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	return nil
}
