// Package scoring provides the fraud scoring functions applied to new
// transactions.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/lo"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/utils/logging"
	"github.com/secmon-lab/argus/pkg/utils/safe"
)

const (
	// DefaultAmountThreshold is the amount above which the rule scorer flags
	DefaultAmountThreshold = 10000
	ruleHighScore          = 90
	ruleHighReason         = "Amount exceeds threshold"
)

// RuleScorer scores transactions with the enabled rules of a rule source.
// The score is the highest score among the matching rules and the reason
// lists their names. Without a source, or while the source holds no enabled
// rule, transactions whose amount exceeds a threshold are flagged.
type RuleScorer struct {
	threshold float64
	rules     interfaces.RuleRepository
}

var _ interfaces.RiskScorer = &RuleScorer{}

type RuleOption func(*RuleScorer)

// WithAmountThreshold overrides DefaultAmountThreshold
func WithAmountThreshold(threshold float64) RuleOption {
	return func(s *RuleScorer) {
		s.threshold = threshold
	}
}

// WithRuleSource evaluates the rules stored in repo on every transaction
func WithRuleSource(repo interfaces.RuleRepository) RuleOption {
	return func(s *RuleScorer) {
		s.rules = repo
	}
}

func NewRuleScorer(opts ...RuleOption) *RuleScorer {
	s := &RuleScorer{threshold: DefaultAmountThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RuleScorer) Score(ctx context.Context, txn *model.Transaction) (*model.RiskAssessment, error) {
	if s.rules != nil {
		rules, err := s.rules.List(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load scoring rules")
		}
		enabled := lo.Filter(rules, func(r *model.Rule, _ int) bool { return r.Enabled })
		if len(enabled) > 0 {
			return evaluate(ctx, enabled, txn), nil
		}
	}

	if txn.Amount > s.threshold {
		return &model.RiskAssessment{Score: ruleHighScore, Reason: ruleHighReason}, nil
	}
	return &model.RiskAssessment{}, nil
}

func evaluate(ctx context.Context, rules []*model.Rule, txn *model.Transaction) *model.RiskAssessment {
	var (
		result  model.RiskAssessment
		matched []string
	)
	for _, rule := range rules {
		cond, err := ParseCondition(rule.Condition)
		if err != nil {
			logging.From(ctx).Warn("skipping rule with invalid condition",
				"rule_id", rule.ID,
				"condition", rule.Condition,
				"error", err,
			)
			continue
		}
		if !cond.Match(txn) {
			continue
		}

		matched = append(matched, rule.Name)
		result.Score = max(result.Score, rule.Score)
	}

	result.Reason = strings.Join(matched, ", ")
	return &result
}

// HTTPScorer posts transactions to an external model endpoint that answers
// {"risk_score": int, "reason": string}.
type HTTPScorer struct {
	endpoint string
	client   *http.Client
}

var _ interfaces.RiskScorer = &HTTPScorer{}

type HTTPOption func(*HTTPScorer)

// WithHTTPClient replaces the default client with a 10 seconds timeout
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPScorer) {
		s.client = client
	}
}

func NewHTTPScorer(endpoint string, opts ...HTTPOption) (*HTTPScorer, error) {
	if endpoint == "" {
		return nil, goerr.New("scoring endpoint is required")
	}

	s := &HTTPScorer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type scoreRequest struct {
	TransactionID string  `json:"transaction_id"`
	AccountID     string  `json:"account_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Country       string  `json:"country"`
	Merchant      string  `json:"merchant,omitempty"`
}

type scoreResponse struct {
	RiskScore int    `json:"risk_score"`
	Reason    string `json:"reason"`
}

func (s *HTTPScorer) Score(ctx context.Context, txn *model.Transaction) (*model.RiskAssessment, error) {
	body, err := json.Marshal(scoreRequest{
		TransactionID: txn.ID.String(),
		AccountID:     txn.AccountID,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		Country:       txn.Country,
		Merchant:      txn.Merchant,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal scoring request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create scoring request", goerr.V("endpoint", s.endpoint))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call scoring endpoint", goerr.V("endpoint", s.endpoint))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, goerr.New("scoring endpoint returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(msg)))
	}

	var result scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode scoring response")
	}
	if result.RiskScore < 0 || result.RiskScore > 100 {
		return nil, goerr.New("risk score out of range", goerr.V("risk_score", result.RiskScore))
	}

	return &model.RiskAssessment{Score: result.RiskScore, Reason: result.Reason}, nil
}
