package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
)

// EventPublisher delivers committed domain events to live connections.
// Publish must not block on slow receivers.
type EventPublisher interface {
	Publish(ctx context.Context, event *model.Event, target policy.Target) error
}

// RiskScorer is the fraud scoring function applied to new transactions
type RiskScorer interface {
	Score(ctx context.Context, txn *model.Transaction) (*model.RiskAssessment, error)
}

// EvidenceObject is the metadata of a stored evidence file
type EvidenceObject struct {
	ContentType string
	Size        int64
}

// EvidenceVerifier checks that an evidence URL points to a readable object
type EvidenceVerifier interface {
	Verify(ctx context.Context, fileURL string) (*EvidenceObject, error)
}

// CaseNotifier forwards case events to an external channel such as Slack
type CaseNotifier interface {
	NotifyCase(ctx context.Context, event *model.Event) error
}
