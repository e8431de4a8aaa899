package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names without prefix
const (
	CollectionCases         = "cases"
	CollectionTransactions  = "transactions"
	CollectionAlerts        = "alerts"
	CollectionUsers         = "users"
	CollectionRules         = "rules"
	CollectionAuditLogs     = "audit_logs"
	CollectionAnnouncements = "announcements"
)

type Firestore struct {
	client        *firestore.Client
	prefix        string
	cases         *caseRepository
	transactions  *transactionRepository
	alerts        *alertRepository
	users         *userRepository
	rules         *ruleRepository
	auditLogs     *auditLogRepository
	announcements *announcementRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix isolates every collection under "<prefix>_<name>"
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.prefix = prefix
	}
}

// New connects to Firestore. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	f.cases = &caseRepository{client: client, collection: f.collectionName(CollectionCases)}
	f.transactions = &transactionRepository{client: client, collection: f.collectionName(CollectionTransactions)}
	f.alerts = &alertRepository{client: client, collection: f.collectionName(CollectionAlerts)}
	f.users = &userRepository{client: client, collection: f.collectionName(CollectionUsers)}
	f.rules = &ruleRepository{client: client, collection: f.collectionName(CollectionRules)}
	f.auditLogs = &auditLogRepository{client: client, collection: f.collectionName(CollectionAuditLogs)}
	f.announcements = &announcementRepository{client: client, collection: f.collectionName(CollectionAnnouncements)}

	return f, nil
}

func (f *Firestore) collectionName(name string) string {
	return CollectionName(f.prefix, name)
}

// CollectionName returns the physical name of a collection under prefix
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

func (f *Firestore) Case() interfaces.CaseRepository {
	return f.cases
}

func (f *Firestore) Transaction() interfaces.TransactionRepository {
	return f.transactions
}

func (f *Firestore) Alert() interfaces.AlertRepository {
	return f.alerts
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.users
}

func (f *Firestore) Rule() interfaces.RuleRepository {
	return f.rules
}

func (f *Firestore) AuditLog() interfaces.AuditLogRepository {
	return f.auditLogs
}

func (f *Firestore) Announcement() interfaces.AnnouncementRepository {
	return f.announcements
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// storeError classifies a Firestore error into the domain taxonomy. Missing
// documents become model.ErrNotFound, existing ones on create become
// model.ErrValidation and everything else model.ErrStoreUnavailable.
func storeError(err error, msg string, values ...goerr.Option) error {
	values = append(values, goerr.V("cause", err.Error()))

	switch status.Code(err) {
	case codes.NotFound:
		return goerr.Wrap(model.ErrNotFound, msg, values...)
	case codes.AlreadyExists:
		return goerr.Wrap(model.ErrValidation, msg, values...)
	default:
		return goerr.Wrap(model.ErrStoreUnavailable, msg, values...)
	}
}
