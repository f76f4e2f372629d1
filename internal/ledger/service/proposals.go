package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/metrics"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/notify"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/pkg/cryptox"
	"github.com/aussiebroadwan/quoteledger/pkg/idx"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

const defaultCurrency = "usd"

// errUnlockRaced rolls back an unlock whose flag was set by a concurrent
// request first.
var errUnlockRaced = errors.New("unlock raced")

// ProposalService owns proposal status and the unlock gate.
type ProposalService struct {
	Store    store.Store
	Notifier notify.Sender
	Metrics  *metrics.Metrics

	// PublicBaseURL prefixes links sent to clients.
	PublicBaseURL     string
	SignatureMinBytes int

	Now func() time.Time
}

// PublicURL is the client-facing link for a share token.
func (s *ProposalService) PublicURL(token string) string {
	return strings.TrimRight(s.PublicBaseURL, "/") + "/p/" + token
}

// Create stores a new draft owned by userID.
func (s *ProposalService) Create(ctx context.Context, userID string, in domain.ProposalInput) (domain.Proposal, error) {
	if err := in.Validate(); err != nil {
		return domain.Proposal{}, err
	}
	if in.Currency == "" {
		in.Currency = defaultCurrency
	}

	now := clock(s.Now)
	p := domain.Proposal{
		ID:             idx.NewAt(now).String(),
		UserID:         userID,
		Title:          in.Title,
		ClientName:     in.ClientName,
		ClientEmail:    in.ClientEmail,
		Content:        in.Content,
		PriceLowCents:  in.PriceLowCents,
		PriceHighCents: in.PriceHighCents,
		Currency:       strings.ToLower(in.Currency),
		Status:         domain.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Store.Proposals().CreateProposal(ctx, p); err != nil {
		return domain.Proposal{}, notFound(err)
	}

	slogx.FromContext(ctx).Info("proposal created", slog.String("proposal_id", p.ID))
	return s.Get(ctx, p.ID, userID)
}

// Get returns the owner's view. Content is withheld until unlocked.
func (s *ProposalService) Get(ctx context.Context, id, userID string) (domain.Proposal, error) {
	p, err := ownedProposal(ctx, s.Store, id, userID)
	if err != nil {
		return domain.Proposal{}, err
	}
	return p.Locked(), nil
}

func (s *ProposalService) List(ctx context.Context, userID string) ([]domain.Proposal, error) {
	ps, err := s.Store.Proposals().ListProposalsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Proposal, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Locked())
	}
	return out, nil
}

// Update edits a proposal that has not been accepted yet.
func (s *ProposalService) Update(ctx context.Context, id, userID string, in domain.ProposalInput) (domain.Proposal, error) {
	if err := in.Validate(); err != nil {
		return domain.Proposal{}, err
	}
	if in.Currency == "" {
		in.Currency = defaultCurrency
	}
	in.Currency = strings.ToLower(in.Currency)

	p, err := ownedProposal(ctx, s.Store, id, userID)
	if err != nil {
		return domain.Proposal{}, err
	}
	if !p.Status.Editable() {
		return domain.Proposal{}, domain.ErrInvalidTransition
	}

	err = s.Store.Proposals().UpdateProposalContent(ctx, id, in, clock(s.Now))
	if errors.Is(err, store.ErrConflict) {
		// Accepted between the read and the write.
		return domain.Proposal{}, domain.ErrInvalidTransition
	}
	if err != nil {
		return domain.Proposal{}, err
	}
	return s.Get(ctx, id, userID)
}

func (s *ProposalService) Delete(ctx context.Context, id, userID string) error {
	if _, err := ownedProposal(ctx, s.Store, id, userID); err != nil {
		return err
	}
	return notFound(s.Store.Proposals().DeleteProposal(ctx, id))
}

// Unlock spends one credit to make a proposal's content visible. An already
// unlocked proposal is returned without charging. The debit and the flag are
// written in one transaction, so a failed debit leaves the proposal locked.
func (s *ProposalService) Unlock(ctx context.Context, id, userID string) (domain.Proposal, error) {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	var (
		out     domain.Proposal
		charged bool
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := ownedProposal(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if p.IsUnlocked {
			out = p
			return nil
		}

		// Flag before debit; a concurrent unlock of the same proposal blocks
		// on this row and then finds it taken.
		if err := tx.Proposals().MarkUnlocked(ctx, id, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return errUnlockRaced
			}
			return err
		}
		if err := debitTx(ctx, tx, userID, 1, now); err != nil {
			return err
		}
		if err := appendAudit(ctx, tx, userID, userID, domain.AuditCreditDebit, "unlock proposal "+id, "", now); err != nil {
			return err
		}

		out, err = tx.Proposals().GetProposalByID(ctx, id)
		charged = true
		return notFound(err)
	})

	switch {
	case errors.Is(err, errUnlockRaced):
		// The other request paid; nothing of ours was written.
		return s.Get(ctx, id, userID)
	case errors.Is(err, domain.ErrInsufficientCredit):
		s.Metrics.DebitRejected()
		log.Info("unlock refused, insufficient credit", slog.String("proposal_id", id))
		return domain.Proposal{}, err
	case err != nil:
		return domain.Proposal{}, err
	}

	if charged {
		s.Metrics.CreditsDebited(1)
		s.Metrics.Unlocked()
		log.Info("proposal unlocked", slog.String("proposal_id", id))
	}
	return out, nil
}

// Share returns the proposal with its public token, creating it on first use.
func (s *ProposalService) Share(ctx context.Context, id, userID string) (domain.Proposal, error) {
	p, err := ownedProposal(ctx, s.Store, id, userID)
	if err != nil {
		return domain.Proposal{}, err
	}
	if p.PublicToken != "" {
		return p.Locked(), nil
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return domain.Proposal{}, err
	}

	err = s.Store.Proposals().SetPublicToken(ctx, id, token, clock(s.Now))
	if err != nil && !errors.Is(err, store.ErrConflict) {
		return domain.Proposal{}, err
	}
	// On conflict a concurrent share won; either way re-read the stored token.
	return s.Get(ctx, id, userID)
}

// Send delivers the proposal link to the client. Only a successful delivery
// moves a draft to sent; later statuses are left alone on resend.
func (s *ProposalService) Send(ctx context.Context, id, userID string) (domain.Proposal, error) {
	log := slogx.FromContext(ctx)

	p, err := s.Share(ctx, id, userID)
	if err != nil {
		return domain.Proposal{}, err
	}
	if p.ClientEmail == "" {
		return domain.Proposal{}, domain.ErrInvalidInput
	}
	if !p.Status.Editable() {
		return domain.Proposal{}, domain.ErrInvalidTransition
	}
	if s.Notifier == nil {
		return domain.Proposal{}, domain.ErrDeliveryFailed
	}

	err = s.Notifier.Send(ctx, notify.Message{
		Kind:      notify.KindProposalSent,
		Recipient: p.ClientEmail,
		Data: map[string]string{
			"proposal_id": p.ID,
			"title":       p.Title,
			"client_name": p.ClientName,
			"link":        s.PublicURL(p.PublicToken),
		},
	})
	if err != nil {
		log.Warn("proposal delivery failed", slog.String("proposal_id", id), slog.Any("error", err))
		s.Metrics.NotifyFailed(string(notify.KindProposalSent))
		return domain.Proposal{}, domain.ErrDeliveryFailed
	}

	if p.Status == domain.StatusDraft {
		err := s.Store.Proposals().MarkSent(ctx, id, clock(s.Now))
		switch {
		case err == nil:
			s.Metrics.Transition(string(domain.StatusSent))
		case !errors.Is(err, store.ErrConflict):
			return domain.Proposal{}, err
		}
	}

	log.Info("proposal sent", slog.String("proposal_id", id))
	return s.Get(ctx, id, userID)
}

// ViewPublic records a client view and returns the public rendering.
func (s *ProposalService) ViewPublic(ctx context.Context, token string) (domain.Proposal, error) {
	p, err := s.Store.Proposals().GetProposalByPublicToken(ctx, token)
	if err != nil {
		return domain.Proposal{}, notFound(err)
	}

	if err := s.Store.Proposals().RecordView(ctx, p.ID, clock(s.Now)); err != nil {
		return domain.Proposal{}, notFound(err)
	}
	if p.Status == domain.StatusSent {
		s.Metrics.Transition(string(domain.StatusViewed))
	}

	p, err = s.Store.Proposals().GetProposalByID(ctx, p.ID)
	if err != nil {
		return domain.Proposal{}, notFound(err)
	}
	return p.Locked(), nil
}

// AcceptPublic records the client's signature. Acceptance happens once; a
// second attempt fails with ErrAlreadyAccepted and leaves the first intact.
func (s *ProposalService) AcceptPublic(ctx context.Context, token string, a domain.Acceptance) (domain.Proposal, error) {
	log := slogx.FromContext(ctx)

	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.TrimSpace(a.Email)
	if err := domain.ValidateAcceptance(a, s.SignatureMinBytes); err != nil {
		return domain.Proposal{}, err
	}

	p, err := s.Store.Proposals().GetProposalByPublicToken(ctx, token)
	if err != nil {
		return domain.Proposal{}, notFound(err)
	}
	if p.IsAccepted() {
		return domain.Proposal{}, domain.ErrAlreadyAccepted
	}

	err = s.Store.Proposals().AcceptProposal(ctx, p.ID, a, clock(s.Now))
	if errors.Is(err, store.ErrConflict) {
		cur, rerr := s.Store.Proposals().GetProposalByID(ctx, p.ID)
		if rerr != nil {
			return domain.Proposal{}, notFound(rerr)
		}
		if cur.IsAccepted() {
			return domain.Proposal{}, domain.ErrAlreadyAccepted
		}
		return domain.Proposal{}, domain.ErrInvalidTransition
	}
	if err != nil {
		return domain.Proposal{}, err
	}

	s.Metrics.Transition(string(domain.StatusAccepted))
	log.Info("proposal accepted", slog.String("proposal_id", p.ID))

	p, err = s.Store.Proposals().GetProposalByID(ctx, p.ID)
	if err != nil {
		return domain.Proposal{}, notFound(err)
	}

	if owner, err := s.Store.Users().GetUserByID(ctx, p.UserID); err == nil {
		deliver(ctx, s.Notifier, s.Metrics, notify.Message{
			Kind:      notify.KindProposalAccepted,
			Recipient: owner.Email,
			Data: map[string]string{
				"proposal_id":  p.ID,
				"title":        p.Title,
				"accepted_by":  p.AcceptedByName,
				"client_email": p.AcceptedByEmail,
			},
		})
	}
	return p.Locked(), nil
}

// Countersign adds the contractor's signature to an accepted proposal.
func (s *ProposalService) Countersign(
	ctx context.Context,
	id, userID, name, signature string,
) (domain.Proposal, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Proposal{}, domain.ErrInvalidInput
	}
	if err := domain.ValidateSignature(signature, s.SignatureMinBytes); err != nil {
		return domain.Proposal{}, err
	}

	p, err := ownedProposal(ctx, s.Store, id, userID)
	if err != nil {
		return domain.Proposal{}, err
	}
	if err := countersignable(p); err != nil {
		return domain.Proposal{}, err
	}

	err = s.Store.Proposals().CountersignProposal(ctx, id, name, signature, clock(s.Now))
	if errors.Is(err, store.ErrConflict) {
		cur, rerr := s.Store.Proposals().GetProposalByID(ctx, id)
		if rerr != nil {
			return domain.Proposal{}, notFound(rerr)
		}
		if err := countersignable(cur); err != nil {
			return domain.Proposal{}, err
		}
		return domain.Proposal{}, domain.ErrInvalidTransition
	}
	if err != nil {
		return domain.Proposal{}, err
	}

	log.Info("proposal countersigned", slog.String("proposal_id", id))

	p, err = s.Store.Proposals().GetProposalByID(ctx, id)
	if err != nil {
		return domain.Proposal{}, notFound(err)
	}

	data := map[string]string{
		"proposal_id":      p.ID,
		"title":            p.Title,
		"countersigned_by": p.CountersignedByName,
	}
	deliver(ctx, s.Notifier, s.Metrics, notify.Message{
		Kind: notify.KindProposalCountersigned, Recipient: p.AcceptedByEmail, Data: data,
	})
	if owner, err := s.Store.Users().GetUserByID(ctx, p.UserID); err == nil {
		deliver(ctx, s.Notifier, s.Metrics, notify.Message{
			Kind: notify.KindProposalCountersigned, Recipient: owner.Email, Data: data,
		})
	}
	return p.Locked(), nil
}

func countersignable(p domain.Proposal) error {
	if p.IsCountersigned() {
		return domain.ErrAlreadyCountersigned
	}
	if p.Status != domain.StatusAccepted {
		return domain.ErrInvalidTransition
	}
	return nil
}

// SetOutcome closes an accepted proposal as won or lost.
func (s *ProposalService) SetOutcome(
	ctx context.Context,
	id, userID string,
	outcome domain.ProposalStatus,
) (domain.Proposal, error) {
	if outcome != domain.StatusWon && outcome != domain.StatusLost {
		return domain.Proposal{}, domain.ErrInvalidInput
	}

	p, err := ownedProposal(ctx, s.Store, id, userID)
	if err != nil {
		return domain.Proposal{}, err
	}
	if !domain.CanTransition(p.Status, outcome) {
		return domain.Proposal{}, domain.ErrInvalidTransition
	}

	err = s.Store.Proposals().SetOutcome(ctx, id, outcome, clock(s.Now))
	if errors.Is(err, store.ErrConflict) {
		return domain.Proposal{}, domain.ErrInvalidTransition
	}
	if err != nil {
		return domain.Proposal{}, err
	}

	s.Metrics.Transition(string(outcome))
	slogx.FromContext(ctx).Info("proposal closed",
		slog.String("proposal_id", id),
		slog.String("outcome", string(outcome)),
	)
	return s.Get(ctx, id, userID)
}
