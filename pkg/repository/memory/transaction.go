package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

type transactionRepository struct {
	mu           sync.RWMutex
	transactions map[types.TransactionID]*model.Transaction
}

func newTransactionRepository() *transactionRepository {
	return &transactionRepository{
		transactions: make(map[types.TransactionID]*model.Transaction),
	}
}

func copyTransaction(txn *model.Transaction) *model.Transaction {
	copied := *txn
	return &copied
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[txn.ID]; exists {
		return nil, goerr.Wrap(model.ErrValidation, "transaction already exists", goerr.V(model.TransactionIDKey, txn.ID))
	}

	r.transactions[txn.ID] = copyTransaction(txn)
	return copyTransaction(txn), nil
}

func (r *transactionRepository) Get(ctx context.Context, id types.TransactionID) (*model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txn, exists := r.transactions[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "transaction not found", goerr.V(model.TransactionIDKey, id))
	}
	return copyTransaction(txn), nil
}

func (r *transactionRepository) List(ctx context.Context, limit int) ([]*model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Transaction, 0, len(r.transactions))
	for _, txn := range r.transactions {
		result = append(result, copyTransaction(txn))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *transactionRepository) Delete(ctx context.Context, id types.TransactionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "transaction not found", goerr.V(model.TransactionIDKey, id))
	}
	delete(r.transactions, id)
	return nil
}
