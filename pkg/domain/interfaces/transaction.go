package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// TransactionRepository defines the interface for Transaction data access
type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	Get(ctx context.Context, id types.TransactionID) (*model.Transaction, error)
	// List returns transactions newest first. A limit of zero means no limit.
	List(ctx context.Context, limit int) ([]*model.Transaction, error)
	Delete(ctx context.Context, id types.TransactionID) error
}
