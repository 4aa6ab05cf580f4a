package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/ticketstats/ticketstats/internal/config"
	"github.com/ticketstats/ticketstats/internal/ports"
)

var ErrEmptyToken = errors.New("upstream token is empty")

// StaticTokenProvider hands out a preconfigured bearer token
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a fixed token
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	if p.token == "" {
		return "", ErrEmptyToken
	}
	return p.token, nil
}

// ServiceClaims are the claims carried by tokens minted for the tracker API
type ServiceClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// SignedTokenProvider mints HS256 service tokens with a secret shared with the tracker API
type SignedTokenProvider struct {
	secret  []byte
	subject string
	issuer  string
	ttl     time.Duration
	clock   clockwork.Clock
}

// NewSignedTokenProvider creates a provider that signs its own tokens
func NewSignedTokenProvider(secret, subject, issuer string, ttl time.Duration, clock clockwork.Clock) *SignedTokenProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SignedTokenProvider{
		secret:  []byte(secret),
		subject: subject,
		issuer:  issuer,
		ttl:     ttl,
		clock:   clock,
	}
}

func (p *SignedTokenProvider) Token(ctx context.Context) (string, error) {
	if len(p.secret) == 0 {
		return "", errors.New("signing secret is empty")
	}

	now := p.clock.Now()
	claims := ServiceClaims{
		Scope: "tickets:read",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign service token: %w", err)
	}
	return signed, nil
}

// NewTokenProvider selects the credential source configured for the upstream API
func NewTokenProvider(cfg config.UpstreamConfig) (ports.TokenProvider, error) {
	switch cfg.AuthMode {
	case "static":
		return NewStaticTokenProvider(cfg.Token), nil
	case "jwt":
		return NewSignedTokenProvider(cfg.JWTSecret, cfg.JWTSubject, cfg.JWTIssuer, cfg.JWTTTL, nil), nil
	default:
		return nil, fmt.Errorf("unsupported upstream auth mode: %s", cfg.AuthMode)
	}
}
