package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// TransactionUseCase ingests monitored transactions, scores them and raises
// alerts for risky ones.
type TransactionUseCase struct {
	*env
	scorer         interfaces.RiskScorer
	alertThreshold int
}

// TransactionInput is the payload of a new transaction
type TransactionInput struct {
	AccountID string
	Amount    float64
	Currency  string
	Country   string
	Merchant  string
}

// TransactionResult is the outcome of ingesting a transaction
type TransactionResult struct {
	Transaction *model.Transaction `json:"transaction"`
	Alert       *model.Alert       `json:"alert,omitempty"`
}

// Create scores and stores a transaction. A score at or above the alert
// threshold also stores an alert. Both are pushed to their live streams.
func (uc *TransactionUseCase) Create(ctx context.Context, actor model.Actor, in TransactionInput) (*TransactionResult, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Require(actor.Role, policy.OpCreateTransaction); err != nil {
		return nil, err
	}
	if in.Amount <= 0 {
		return nil, goerr.Wrap(model.ErrValidation, "amount must be positive", goerr.V("amount", in.Amount))
	}

	now := uc.now()
	txn := &model.Transaction{
		ID:        types.NewTransactionID(),
		AccountID: in.AccountID,
		Amount:    in.Amount,
		Currency:  strings.ToUpper(in.Currency),
		Country:   strings.ToUpper(in.Country),
		Merchant:  in.Merchant,
		CreatedBy: actor.ID,
		CreatedAt: now,
	}

	assessment, err := uc.scorer.Score(ctx, txn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to score transaction", goerr.V(model.TransactionIDKey, txn.ID))
	}
	txn.RiskScore = assessment.Score
	txn.RiskReason = assessment.Reason
	txn.Flagged = assessment.Score >= uc.alertThreshold

	if err := uc.store(ctx, "failed to create transaction", func(ctx context.Context) (err error) {
		txn, err = uc.repo.Transaction().Create(ctx, txn)
		return err
	}, goerr.V(model.TransactionIDKey, txn.ID)); err != nil {
		return nil, err
	}

	result := &TransactionResult{Transaction: txn}
	if txn.Flagged {
		alert := &model.Alert{
			ID:            types.NewAlertID(),
			TransactionID: txn.ID,
			Reason:        assessment.Reason,
			RiskScore:     assessment.Score,
			CreatedAt:     now,
		}
		if err := uc.store(ctx, "failed to create alert", func(ctx context.Context) (err error) {
			alert, err = uc.repo.Alert().Create(ctx, alert)
			return err
		}, goerr.V(model.TransactionIDKey, txn.ID)); err != nil {
			return nil, err
		}
		result.Alert = alert
	}

	uc.publish(ctx, model.NewTransactionEvent(txn, result.Alert != nil), policy.ToRoom(policy.RoomTransactionStream))
	if result.Alert != nil {
		uc.publish(ctx, model.NewAlertEvent(result.Alert), policy.ToRoom(policy.RoomAlertStream))
	}
	uc.audit(ctx, actor, model.AuditActionTransactionCreated, model.AuditTargetTransaction, txn.ID.String(), txn.RiskReason)

	return result, nil
}

// List returns the latest transactions
func (uc *TransactionUseCase) List(ctx context.Context, actor model.Actor, limit int) ([]*model.Transaction, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Require(actor.Role, policy.OpViewTransactions); err != nil {
		return nil, err
	}

	var txns []*model.Transaction
	if err := uc.store(ctx, "failed to list transactions", func(ctx context.Context) (err error) {
		txns, err = uc.repo.Transaction().List(ctx, limit)
		return err
	}); err != nil {
		return nil, err
	}
	return txns, nil
}

// Delete removes a transaction and announces the removal
func (uc *TransactionUseCase) Delete(ctx context.Context, actor model.Actor, id types.TransactionID) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if err := policy.Require(actor.Role, policy.OpDeleteTransaction); err != nil {
		return err
	}

	if err := uc.store(ctx, "failed to delete transaction", func(ctx context.Context) error {
		return uc.repo.Transaction().Delete(ctx, id)
	}, goerr.V(model.TransactionIDKey, id)); err != nil {
		return err
	}

	uc.publish(ctx, model.NewTransactionDeletedEvent(id, actor.ID), policy.ToRoom(policy.RoomTransactionStream))
	uc.audit(ctx, actor, model.AuditActionTransactionDeleted, model.AuditTargetTransaction, id.String(), "")
	return nil
}
