package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/quoteledger/pkg/jwtx"
)

// InitVerifier builds the token verifier for the identity provider.
//
// HS256 verifies against the shared secret and returns a nil key set.
// EdDSA and RS256 verify against the provider's JWKS, which is fetched once
// here and then refreshed in the background until ctx is cancelled. A failed
// first fetch is not fatal: /readyz reports not ready until keys arrive.
func InitVerifier(ctx context.Context, cfg Config, logger *slog.Logger) (jwtx.Verifier, *jwtx.KeySet, error) {
	opts := jwtx.VerifyOptions{
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   cfg.JWTLeeway,
	}

	if cfg.JWTAlgorithm == "HS256" {
		v, err := jwtx.NewVerifier(cfg.JWTAlgorithm, nil, []byte(cfg.JWTSecret), opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create verifier: %w", err)
		}
		logger.Info("token verifier initialized", "algorithm", cfg.JWTAlgorithm)
		return v, nil, nil
	}

	keys := jwtx.NewKeySet()
	v, err := jwtx.NewVerifier(cfg.JWTAlgorithm, keys, nil, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create verifier: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := keys.Refresh(fetchCtx, client, cfg.JWKSURL); err != nil {
		logger.Warn("initial jwks fetch failed", "url", cfg.JWKSURL, "error", err)
	}

	go keys.RefreshEvery(ctx, client, cfg.JWKSURL, cfg.JWKSRefresh, logger)

	logger.Info("token verifier initialized",
		"algorithm", cfg.JWTAlgorithm,
		"jwks_url", cfg.JWKSURL,
		"refresh", cfg.JWKSRefresh,
	)
	return v, keys, nil
}
