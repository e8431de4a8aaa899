package config

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// SeedFile is the principal directory and the optional fixture data loaded
// at startup.
//
//	[[user]]
//	id = "alice"
//	name = "Alice"
//	role = "admin"
//
//	[[transaction]]
//	id = "txn-1"
//	account_id = "acct-1"
//	amount = 12500.0
//	currency = "USD"
//	country = "US"
//	risk_score = 85
//
//	[[alert]]
//	id = "alert-1"
//	transaction_id = "txn-1"
//	reason = "Amount exceeds threshold"
//	risk_score = 85
type SeedFile struct {
	Users        []model.User      `toml:"user"`
	Transactions []SeedTransaction `toml:"transaction"`
	Alerts       []SeedAlert       `toml:"alert"`
}

type SeedTransaction struct {
	ID         string  `toml:"id"`
	AccountID  string  `toml:"account_id"`
	Amount     float64 `toml:"amount"`
	Currency   string  `toml:"currency"`
	Country    string  `toml:"country"`
	Merchant   string  `toml:"merchant"`
	RiskScore  int     `toml:"risk_score"`
	RiskReason string  `toml:"risk_reason"`
}

type SeedAlert struct {
	ID            string `toml:"id"`
	TransactionID string `toml:"transaction_id"`
	Reason        string `toml:"reason"`
	RiskScore     int    `toml:"risk_score"`
}

// Validate checks the seed entries and their references
func (s *SeedFile) Validate() error {
	users := make(map[types.PrincipalID]struct{}, len(s.Users))
	for i, u := range s.Users {
		if err := u.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid user", goerr.V(EntryIndexKey, i), goerr.V("cause", err.Error()))
		}
		if _, dup := users[u.ID]; dup {
			return goerr.Wrap(ErrDuplicateID, "duplicate user ID", goerr.V("id", u.ID))
		}
		users[u.ID] = struct{}{}
	}

	txns := make(map[string]struct{}, len(s.Transactions))
	for i, t := range s.Transactions {
		if t.ID == "" {
			return goerr.Wrap(ErrInvalidConfig, "transaction ID is required", goerr.V(EntryIndexKey, i))
		}
		if t.Amount <= 0 {
			return goerr.Wrap(ErrInvalidConfig, "transaction amount must be positive", goerr.V("id", t.ID))
		}
		if t.RiskScore < 0 || t.RiskScore > 100 {
			return goerr.Wrap(ErrInvalidConfig, "risk score must be between 0 and 100", goerr.V("id", t.ID))
		}
		if _, dup := txns[t.ID]; dup {
			return goerr.Wrap(ErrDuplicateID, "duplicate transaction ID", goerr.V("id", t.ID))
		}
		txns[t.ID] = struct{}{}
	}

	for i, a := range s.Alerts {
		if _, ok := txns[a.TransactionID]; !ok {
			return goerr.Wrap(ErrInvalidConfig, "alert refers to an unknown transaction",
				goerr.V(EntryIndexKey, i), goerr.V("transaction_id", a.TransactionID))
		}
	}
	return nil
}

// LoadSeedFile reads and validates a seed file
func LoadSeedFile(path string) (*SeedFile, error) {
	// #nosec G304 -- path comes from CLI flag, not user input
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "seed file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read seed file", goerr.V(ConfigPathKey, path))
	}

	var seed SeedFile
	if err := toml.Unmarshal(raw, &seed); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse seed file", goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}
	if err := seed.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid seed file", goerr.V(ConfigPathKey, path))
	}
	return &seed, nil
}

// Apply stores the seed entries. Users are upserted; transactions and
// alerts already in the store are left untouched so that a restart does not
// fail on a persistent backend.
func (s *SeedFile) Apply(ctx context.Context, repo interfaces.Repository, now time.Time) error {
	for i := range s.Users {
		if err := repo.User().Put(ctx, &s.Users[i]); err != nil {
			return goerr.Wrap(err, "failed to seed user", goerr.V("id", s.Users[i].ID))
		}
	}

	for _, t := range s.Transactions {
		if _, err := repo.Transaction().Get(ctx, types.TransactionID(t.ID)); err == nil {
			continue
		} else if !errors.Is(err, model.ErrNotFound) {
			return goerr.Wrap(err, "failed to look up seeded transaction", goerr.V("id", t.ID))
		}

		txn := &model.Transaction{
			ID:         types.TransactionID(t.ID),
			AccountID:  t.AccountID,
			Amount:     t.Amount,
			Currency:   t.Currency,
			Country:    t.Country,
			Merchant:   t.Merchant,
			RiskScore:  t.RiskScore,
			RiskReason: t.RiskReason,
			CreatedAt:  now,
		}
		if _, err := repo.Transaction().Create(ctx, txn); err != nil {
			return goerr.Wrap(err, "failed to seed transaction", goerr.V("id", t.ID))
		}
	}

	for _, a := range s.Alerts {
		id := types.AlertID(a.ID)
		if id == "" {
			id = types.AlertID("alert-" + a.TransactionID)
		}
		if _, err := repo.Alert().Get(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, model.ErrNotFound) {
			return goerr.Wrap(err, "failed to look up seeded alert", goerr.V("id", id))
		}

		alert := &model.Alert{
			ID:            id,
			TransactionID: types.TransactionID(a.TransactionID),
			Reason:        a.Reason,
			RiskScore:     a.RiskScore,
			CreatedAt:     now,
		}
		if _, err := repo.Alert().Create(ctx, alert); err != nil {
			return goerr.Wrap(err, "failed to seed alert", goerr.V("transaction_id", a.TransactionID))
		}
	}
	return nil
}

// Seed holds the seed file flags
type Seed struct {
	path            string
	refreshInterval time.Duration
}

func (x *Seed) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "seed",
			Usage:       "TOML file with the principal directory and fixture data",
			Sources:     cli.EnvVars("ARGUS_SEED"),
			Destination: &x.path,
		},
		&cli.DurationFlag{
			Name:        "seed-refresh-interval",
			Usage:       "Reload the users of the seed file at this interval (0 disables)",
			Sources:     cli.EnvVars("ARGUS_SEED_REFRESH_INTERVAL"),
			Destination: &x.refreshInterval,
		},
	}
}

// RefreshInterval returns the directory reload interval, 0 when disabled
func (x *Seed) RefreshInterval() time.Duration {
	if x.path == "" {
		return 0
	}
	return x.refreshInterval
}

// ListUsers reads the users of the seed file again
func (x *Seed) ListUsers(ctx context.Context) ([]*model.User, error) {
	seed, err := LoadSeedFile(x.path)
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, len(seed.Users))
	for i := range seed.Users {
		users[i] = &seed.Users[i]
	}
	return users, nil
}

// Path returns the seed file path
func (x *Seed) Path() string {
	return x.path
}

// Configure loads the seed file, or returns nil when none is configured
func (x *Seed) Configure() (*SeedFile, error) {
	if x.path == "" {
		return nil, nil
	}
	return LoadSeedFile(x.path)
}
