package model

import (
	"time"

	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Alert is raised when a transaction scores above the alert threshold
type Alert struct {
	ID            types.AlertID       `json:"id" firestore:"id"`
	TransactionID types.TransactionID `json:"transactionId" firestore:"transaction_id"`
	Reason        string              `json:"reason" firestore:"reason"`
	RiskScore     int                 `json:"riskScore" firestore:"risk_score"`
	Resolved      bool                `json:"resolved" firestore:"resolved"`
	ResolvedAt    *time.Time          `json:"resolvedAt,omitempty" firestore:"resolved_at"`
	CreatedAt     time.Time           `json:"createdAt" firestore:"created_at"`
}
