package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// AuthUseCaseInterface resolves a bearer credential to the acting principal
type AuthUseCaseInterface interface {
	Authenticate(ctx context.Context, token string) (model.Actor, error)
	IsNoAuthn() bool
}

const (
	defaultRoleClaim = "role"
	jwksRefreshAfter = 15 * time.Minute
)

// AuthUseCase verifies JWT bearer tokens signed either with a shared HMAC
// key or with a key published at a JWKS URL.
type AuthUseCase struct {
	repo      interfaces.Repository
	hmacKey   []byte
	jwksURL   string
	issuer    string
	audience  string
	roleClaim string
	cache     *authCache

	keysMu    sync.Mutex
	keys      jwk.Set
	fetchedAt time.Time
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithHMACKey verifies HS256 tokens with a shared secret
func WithHMACKey(key []byte) AuthOption {
	return func(uc *AuthUseCase) {
		uc.hmacKey = key
	}
}

// WithJWKSURL verifies tokens with the keys published at url
func WithJWKSURL(url string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.jwksURL = url
	}
}

// WithIssuer requires the iss claim
func WithIssuer(issuer string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.issuer = issuer
	}
}

// WithAudience requires the aud claim
func WithAudience(audience string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.audience = audience
	}
}

// WithRoleClaim sets the claim carrying the role, "role" by default
func WithRoleClaim(name string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.roleClaim = name
	}
}

func NewAuthUseCase(repo interfaces.Repository, options ...AuthOption) (*AuthUseCase, error) {
	uc := &AuthUseCase{
		repo:      repo,
		roleClaim: defaultRoleClaim,
		cache:     newAuthCache(),
	}

	for _, opt := range options {
		opt(uc)
	}

	if len(uc.hmacKey) == 0 && uc.jwksURL == "" {
		return nil, goerr.New("either HMAC key or JWKS URL is required")
	}

	if len(uc.hmacKey) > 0 {
		key, err := jwk.FromRaw(uc.hmacKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build HMAC key")
		}
		if err := key.Set(jwk.AlgorithmKey, jwa.HS256); err != nil {
			return nil, goerr.Wrap(err, "failed to set key algorithm")
		}
		set := jwk.NewSet()
		if err := set.AddKey(key); err != nil {
			return nil, goerr.Wrap(err, "failed to build key set")
		}
		uc.keys = set
	}

	return uc, nil
}

// IsNoAuthn returns false for AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

func (uc *AuthUseCase) keySet(ctx context.Context) (jwk.Set, error) {
	uc.keysMu.Lock()
	defer uc.keysMu.Unlock()

	if uc.jwksURL == "" || (uc.keys != nil && time.Since(uc.fetchedAt) < jwksRefreshAfter) {
		return uc.keys, nil
	}

	set, err := jwk.Fetch(ctx, uc.jwksURL)
	if err != nil {
		if uc.keys != nil {
			return uc.keys, nil
		}
		return nil, goerr.Wrap(err, "failed to fetch public keys", goerr.V("jwks_uri", uc.jwksURL))
	}

	uc.keys = set
	uc.fetchedAt = time.Now()
	return set, nil
}

// Authenticate verifies the token and returns the principal it names. The
// role comes from the role claim, or from the directory when the token has
// none.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (model.Actor, error) {
	if token == "" {
		return model.Actor{}, goerr.Wrap(model.ErrAuthRejected, "token is required")
	}
	if actor, ok := uc.cache.get(token); ok {
		return actor, nil
	}

	keys, err := uc.keySet(ctx)
	if err != nil {
		return model.Actor{}, goerr.Wrap(model.ErrAuthRejected, "no verification key", goerr.V("cause", err.Error()))
	}

	parseOpts := []jwt.ParseOption{
		jwt.WithKeySet(keys, jws.WithInferAlgorithmFromKey(true), jws.WithRequireKid(false)),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(10 * time.Second),
	}
	if uc.issuer != "" {
		parseOpts = append(parseOpts, jwt.WithIssuer(uc.issuer))
	}
	if uc.audience != "" {
		parseOpts = append(parseOpts, jwt.WithAudience(uc.audience))
	}

	parsed, err := jwt.Parse([]byte(token), parseOpts...)
	if err != nil {
		return model.Actor{}, goerr.Wrap(model.ErrAuthRejected, "failed to parse or verify JWT token", goerr.V("cause", err.Error()))
	}

	actor := model.Actor{ID: types.PrincipalID(parsed.Subject())}
	if v, ok := parsed.Get(uc.roleClaim); ok {
		if s, ok := v.(string); ok {
			actor.Role = types.Role(s)
		}
	}
	if actor.Role == "" && actor.ID != "" {
		user, err := uc.repo.User().Get(ctx, actor.ID)
		if err != nil {
			return model.Actor{}, goerr.Wrap(model.ErrAuthRejected, "principal has no role", goerr.V(model.PrincipalIDKey, actor.ID), goerr.V("cause", err.Error()))
		}
		actor.Role = user.Role
	}

	if err := actor.Validate(); err != nil {
		return model.Actor{}, err
	}

	uc.cache.set(token, actor, parsed.Expiration())
	return actor, nil
}
