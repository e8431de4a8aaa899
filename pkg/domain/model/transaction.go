package model

import (
	"time"

	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Transaction is a monitored payment with its fraud score
type Transaction struct {
	ID         types.TransactionID `json:"id" firestore:"id"`
	AccountID  string              `json:"accountId" firestore:"account_id"`
	Amount     float64             `json:"amount" firestore:"amount"`
	Currency   string              `json:"currency" firestore:"currency"`
	Country    string              `json:"country" firestore:"country"`
	Merchant   string              `json:"merchant,omitempty" firestore:"merchant"`
	RiskScore  int                 `json:"riskScore" firestore:"risk_score"`
	RiskReason string              `json:"riskReason,omitempty" firestore:"risk_reason"`
	Flagged    bool                `json:"flagged" firestore:"flagged"`
	CreatedBy  types.PrincipalID   `json:"createdBy,omitempty" firestore:"created_by"`
	CreatedAt  time.Time           `json:"createdAt" firestore:"created_at"`
}

// RiskAssessment is the opaque output of the fraud scoring function
type RiskAssessment struct {
	Score  int
	Reason string
}
