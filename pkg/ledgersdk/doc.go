/*
Package ledgersdk provides the wire types and a small client for the
quoteledger HTTP API.

# Overview

The same request and response types are used by the service's handlers and
by Go callers, so the two cannot drift apart. Requests carry validator tags
that the service enforces; the client does not validate before sending.

# Client

A Client holds the base URL and, for authenticated routes, the identity
provider's access token:

	client := ledgersdk.NewClient("https://ledger.example.com")
	client.Token = accessToken

	me, err := client.Me(ctx)

	p, err := client.CreateProposal(ctx, ledgersdk.ProposalRequest{
		Title:          "Bathroom renovation",
		PriceLowCents:  800000,
		PriceHighCents: 1200000,
	})

	p, err = client.UnlockProposal(ctx, p.ID)
	if ledgersdk.IsCode(err, ledgersdk.ErrorCodePaymentRequired) {
		// Show the paywall.
	}

Public routes (proposal view and acceptance) need no token:

	view, err := client.ViewPublicProposal(ctx, token)
	view, err = client.AcceptPublicProposal(ctx, token, ledgersdk.AcceptRequest{...})

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status
and the error code from the body. Use IsCode or errors.As to branch on it.
*/
package ledgersdk
