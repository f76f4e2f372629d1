package ledger_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
)

// TestUnlockRateLimit verifies the strict profile (5 per minute) applies per
// user on the unlock route.
func TestUnlockRateLimit(t *testing.T) {
	baseURL, cleanup := setupLedgerContainerWithDefaultRateLimits(t)
	defer cleanup()

	ctx := t.Context()
	pat := userClient(t, baseURL, "pat")

	limited := false
	for i := 0; i < 10; i++ {
		_, err := pat.UnlockProposal(ctx, "01JA0000000000000000000000")
		var apiErr *ledgersdk.APIError
		require.True(t, errors.As(err, &apiErr))
		if apiErr.StatusCode == http.StatusTooManyRequests {
			require.Equal(t, ledgersdk.ErrorCodeRateLimited, apiErr.Code)
			require.GreaterOrEqual(t, i, 5, "first 5 requests fit the burst")
			limited = true
			break
		}
		require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	}
	require.True(t, limited, "expected a 429 within 10 requests")

	// Another user has their own bucket.
	_, err := userClient(t, baseURL, "robin").UnlockProposal(ctx, "01JA0000000000000000000000")
	requireCode(t, err, ledgersdk.ErrorCodeNotFound)
}
