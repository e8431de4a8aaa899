package usecase

import (
	"time"

	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/service/scoring"
	"github.com/secmon-lab/argus/pkg/utils/keylock"
)

// DefaultAlertThreshold is the risk score from which a transaction raises an alert
const DefaultAlertThreshold = 70

type UseCases struct {
	env *env

	scorer         interfaces.RiskScorer
	verifier       interfaces.EvidenceVerifier
	alertThreshold int

	Case         *CaseUseCase
	Transaction  *TransactionUseCase
	Alert        *AlertUseCase
	Message      *MessageUseCase
	Rule         *RuleUseCase
	AuditLog     *AuditLogUseCase
	Announcement *AnnouncementUseCase
	Auth         AuthUseCaseInterface
}

type Option func(*UseCases)

// WithPublisher sets the destination of committed domain events
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(uc *UseCases) {
		uc.env.publisher = p
	}
}

// WithCaseNotifier forwards case events to an external channel
func WithCaseNotifier(n interfaces.CaseNotifier) Option {
	return func(uc *UseCases) {
		uc.env.notifier = n
	}
}

// WithEvidenceVerifier checks evidence URLs before they are attached
func WithEvidenceVerifier(v interfaces.EvidenceVerifier) Option {
	return func(uc *UseCases) {
		uc.verifier = v
	}
}

// WithRiskScorer replaces the default scorer, which evaluates the stored
// rules and falls back to the amount threshold
func WithRiskScorer(s interfaces.RiskScorer) Option {
	return func(uc *UseCases) {
		uc.scorer = s
	}
}

// WithAlertThreshold sets the score from which a transaction raises an alert
func WithAlertThreshold(threshold int) Option {
	return func(uc *UseCases) {
		uc.alertThreshold = threshold
	}
}

// WithStoreTimeout bounds every record store call
func WithStoreTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.env.storeTimeout = d
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.env.now = now
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		env: &env{
			repo:      repo,
			publisher: nopPublisher{},
			now:       func() time.Time { return time.Now().UTC() },
			locks:     keylock.New(),
		},
		scorer:         scoring.NewRuleScorer(scoring.WithRuleSource(repo.Rule())),
		alertThreshold: DefaultAlertThreshold,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Case = &CaseUseCase{env: uc.env, verifier: uc.verifier}
	uc.Transaction = &TransactionUseCase{env: uc.env, scorer: uc.scorer, alertThreshold: uc.alertThreshold}
	uc.Alert = &AlertUseCase{env: uc.env}
	uc.Message = &MessageUseCase{env: uc.env}
	uc.Rule = &RuleUseCase{env: uc.env}
	uc.AuditLog = &AuditLogUseCase{env: uc.env}
	uc.Announcement = &AnnouncementUseCase{env: uc.env}
	if uc.Auth == nil {
		uc.Auth = NewNoAuthnUseCase(repo, "", "")
	}

	return uc
}
