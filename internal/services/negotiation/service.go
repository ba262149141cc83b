// Package negotiation drives trade and treaty proposals from creation to
// resolution: the initiator confirms first, only then is the counterparty
// asked, and an accepted deal is logged, rendered and announced.
package negotiation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
	"github.com/gustav-de-Mando/KuratorV1/internal/replies"
	"github.com/gustav-de-Mando/KuratorV1/internal/repositories/negotiations"
	"github.com/gustav-de-Mando/KuratorV1/internal/repositories/treaties"
)

// ReplyAwaiter waits for one party's answer to one negotiation.
type ReplyAwaiter interface {
	Await(ctx context.Context, negotiationID, partyID string, timeout time.Duration) (replies.Reply, error)
}

// LogSink records finalized deals in the shared ledger.
type LogSink interface {
	LogTrade(ctx context.Context, n *models.Negotiation, signedAt time.Time) error
	LogTreaty(ctx context.Context, n *models.Negotiation, signedAt time.Time) error
}

// Renderer produces the PNG document of a finalized negotiation.
type Renderer interface {
	Render(n *models.Negotiation, signedAt time.Time) ([]byte, error)
}

// Archiver stores a rendered document and returns a link to it.
type Archiver interface {
	Store(ctx context.Context, key string, png []byte) (string, error)
}

// Sealer issues a verification token for a finalized negotiation.
type Sealer interface {
	Issue(n *models.Negotiation, signedAt time.Time) (string, error)
}

type Config struct {
	TradeReplyTimeout     time.Duration
	TreatyReplyTimeout    time.Duration
	AnnouncementChannelID string
	// SealBaseURL prefixes seal tokens in announcements, e.g. "https://kurator.example/seal/".
	SealBaseURL string
}

// Deps groups the collaborators of a Service. Archiver and Sealer are optional.
type Deps struct {
	Messenger chat.Messenger
	Replies   ReplyAwaiter
	Store     negotiations.Store
	Treaties  treaties.Repository
	Sink      LogSink
	Renderer  Renderer
	Archiver  Archiver
	Sealer    Sealer
}

type Service struct {
	deps   Deps
	config Config
	logger logging.Logger
	now    func() time.Time

	wg sync.WaitGroup
}

func NewService(deps Deps, config Config, logger logging.Logger) *Service {
	return &Service{
		deps:   deps,
		config: config,
		logger: logger.With("module", "negotiation"),
		now:    time.Now,
	}
}

// TradeProposal is the input of ProposeTrade.
type TradeProposal struct {
	Initiator         models.Party
	Counterparty      models.Party
	CounterpartyIsBot bool
	Offer             models.Goods
	Request           models.Goods
	BreachClause      string
	Notes             string
	OriginChannelID   string
}

// TreatyProposal is the input of ProposeTreaty.
type TreatyProposal struct {
	Initiator         models.Party
	Counterparty      models.Party
	CounterpartyIsBot bool
	Type              models.TreatyKind
	DurationDays      int
	BreachClause      string
	Notes             string
	OriginChannelID   string
}

func validateParties(initiator, counterparty models.Party, isBot bool) error {
	if initiator.ID == counterparty.ID {
		return common.NewValidationError("Du kannst keinen Vertrag mit dir selbst abschließen.")
	}
	if isBot {
		return common.NewValidationError("Du kannst keinen Vertrag mit einem Bot abschließen.")
	}
	return nil
}

// ProposeTrade validates and stores a trade proposal and delivers it to
// the initiator. The caller runs the rest of the protocol with Run or Start.
func (s *Service) ProposeTrade(ctx context.Context, p TradeProposal) (*models.Negotiation, error) {
	if err := validateParties(p.Initiator, p.Counterparty, p.CounterpartyIsBot); err != nil {
		return nil, err
	}
	if p.Offer.Amount <= 0 || p.Request.Amount <= 0 {
		return nil, common.NewValidationError("Die Mengen müssen größer als 0 sein.")
	}

	n := &models.Negotiation{
		ID:              uuid.NewString(),
		Kind:            models.KindTrade,
		Initiator:       p.Initiator,
		Counterparty:    p.Counterparty,
		Trade:           &models.TradeTerms{Offer: p.Offer, Request: p.Request},
		BreachClause:    p.BreachClause,
		Notes:           p.Notes,
		CreatedAt:       s.now(),
		OriginChannelID: p.OriginChannelID,
	}
	return s.propose(ctx, n)
}

// ProposeTreaty validates and stores a treaty proposal, enforcing the
// per-kind limit for both parties, and delivers it to the initiator.
func (s *Service) ProposeTreaty(ctx context.Context, p TreatyProposal) (*models.Negotiation, error) {
	if err := validateParties(p.Initiator, p.Counterparty, p.CounterpartyIsBot); err != nil {
		return nil, err
	}
	if !p.Type.Valid() {
		return nil, common.NewValidationError("Unbekannter Vertragstyp.")
	}
	if p.DurationDays < 1 {
		return nil, common.NewValidationError("Die Laufzeit muss mindestens einen Tag betragen.")
	}

	for _, party := range []models.Party{p.Initiator, p.Counterparty} {
		count, err := s.deps.Treaties.CountActive(ctx, party.ID, p.Type)
		if err != nil {
			return nil, fmt.Errorf("count treaties: %w", err)
		}
		if count >= p.Type.Limit() {
			who := "Du hast"
			if party.ID == p.Counterparty.ID {
				who = party.Nation + " hat"
			}
			return nil, common.NewValidationError(fmt.Sprintf(
				"%s bereits die maximale Anzahl an aktiven Verträgen vom Typ %s erreicht (%d).", who, p.Type, p.Type.Limit()))
		}
	}

	now := s.now()
	n := &models.Negotiation{
		ID:           uuid.NewString(),
		Kind:         models.KindTreaty,
		Initiator:    p.Initiator,
		Counterparty: p.Counterparty,
		Treaty: &models.TreatyTerms{
			Type:         p.Type,
			DurationDays: p.DurationDays,
			// whole seconds, the precision the SQL backends store
			ExpiresAt:    now.AddDate(0, 0, p.DurationDays).Truncate(time.Second),
		},
		BreachClause:    p.BreachClause,
		Notes:           p.Notes,
		CreatedAt:       now,
		OriginChannelID: p.OriginChannelID,
	}
	return s.propose(ctx, n)
}

func (s *Service) propose(ctx context.Context, n *models.Negotiation) (*models.Negotiation, error) {
	id, err := s.deps.Store.Create(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("store negotiation: %w", err)
	}
	n.ID = id

	if err := s.deps.Messenger.SendDirect(ctx, n.Initiator.ID, proposalMessage(n, models.RoleInitiator)); err != nil {
		_ = s.deps.Store.Remove(ctx, id)
		return nil, fmt.Errorf("deliver proposal to initiator: %w", err)
	}

	s.logger.Info(ctx, "negotiation proposed", "id", id, "kind", n.Kind.String(),
		"initiator", n.Initiator.ID, "counterparty", n.Counterparty.ID)
	return n, nil
}

// Start runs the protocol for id in a goroutine; Wait blocks until every
// started negotiation has resolved.
func (s *Service) Start(ctx context.Context, id string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Run(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error(ctx, "negotiation failed", "id", id, "error", err)
		}
	}()
}

func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) timeout(n *models.Negotiation) time.Duration {
	if n.Kind == models.KindTreaty {
		return s.config.TreatyReplyTimeout
	}
	return s.config.TradeReplyTimeout
}

// Run drives the stored negotiation id to resolution. The record is
// removed from the store on every exit path.
func (s *Service) Run(ctx context.Context, id string) error {
	n, err := s.deps.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	defer func() {
		// ctx may already be cancelled at shutdown
		_ = s.deps.Store.Remove(context.WithoutCancel(ctx), id)
	}()

	log := s.logger.With("id", id, "kind", n.Kind.String())
	timeout := s.timeout(n)

	reply, err := s.deps.Replies.Await(ctx, id, n.Initiator.ID, timeout)
	switch {
	case errors.Is(err, common.ErrReplyTimeout):
		log.Info(ctx, "initiator did not answer in time")
		s.send(ctx, n.Initiator.ID, chat.Text(timeoutText(n)))
		return nil
	case err != nil:
		return err
	case !reply.Affirmative:
		log.Info(ctx, "initiator rejected", "reason", reply.Reason)
		n.Acceptance.Initiator = false
		s.send(ctx, n.Initiator.ID, rejectionMessage(n, models.RoleInitiator, rejectionReason(n, models.RoleInitiator, reply.Reason)))
		return nil
	}

	n.Acceptance.Initiator = true
	if err := s.deps.Store.SetAcceptance(ctx, id, models.RoleInitiator, true); err != nil {
		return err
	}

	if err := s.deps.Messenger.SendDirect(ctx, n.Counterparty.ID, proposalMessage(n, models.RoleCounterparty)); err != nil {
		log.Warn(ctx, "cannot deliver proposal to counterparty", "error", err)
		s.send(ctx, n.Initiator.ID, chat.Text(deliveryRefusedText(n)))
		return nil
	}
	s.send(ctx, n.Initiator.ID, chat.Text(awaitingPartnerText(n)))

	reply, err = s.deps.Replies.Await(ctx, id, n.Counterparty.ID, timeout)
	switch {
	case errors.Is(err, common.ErrReplyTimeout):
		log.Info(ctx, "counterparty did not answer in time")
		s.finalizeRejected(ctx, n, timeoutReason)
		return nil
	case err != nil:
		return err
	case !reply.Affirmative:
		log.Info(ctx, "counterparty rejected", "reason", reply.Reason)
		s.finalizeRejected(ctx, n, rejectionReason(n, models.RoleCounterparty, reply.Reason))
		return nil
	}

	n.Acceptance.Counterparty = true
	if err := s.deps.Store.SetAcceptance(ctx, id, models.RoleCounterparty, true); err != nil {
		return err
	}

	s.finalizeAccepted(ctx, n)
	log.Info(ctx, "negotiation accepted")
	return nil
}

// send delivers a best-effort notification; failures are only logged.
func (s *Service) send(ctx context.Context, userID string, msg chat.Message) {
	if err := s.deps.Messenger.SendDirect(ctx, userID, msg); err != nil {
		s.logger.Warn(ctx, "notification failed", "user", userID, "error", err)
	}
}

func (s *Service) announce(ctx context.Context, channelID string, msg chat.Message) {
	if channelID == "" {
		return
	}
	if err := s.deps.Messenger.SendChannel(ctx, channelID, msg); err != nil {
		s.logger.Warn(ctx, "announcement failed", "channel", channelID, "error", err)
	}
}

// acceptedChannel is the announcement channel, or the channel the deal was
// proposed in when none is configured.
func (s *Service) acceptedChannel(n *models.Negotiation) string {
	if s.config.AnnouncementChannelID != "" {
		return s.config.AnnouncementChannelID
	}
	return n.OriginChannelID
}

func (s *Service) finalizeRejected(ctx context.Context, n *models.Negotiation, reason string) {
	s.send(ctx, n.Initiator.ID, rejectionMessage(n, models.RoleInitiator, reason))
	s.send(ctx, n.Counterparty.ID, rejectionMessage(n, models.RoleCounterparty, reason))

	channel := n.OriginChannelID
	if channel == "" {
		channel = s.config.AnnouncementChannelID
	}
	s.announce(ctx, channel, rejectionAnnouncement(n))
}

func (s *Service) logDeal(ctx context.Context, n *models.Negotiation, signedAt time.Time) error {
	if s.deps.Sink == nil {
		return common.ErrorSinkDisabled
	}
	if n.Kind == models.KindTreaty {
		return s.deps.Sink.LogTreaty(ctx, n, signedAt)
	}
	return s.deps.Sink.LogTrade(ctx, n, signedAt)
}

func (s *Service) finalizeAccepted(ctx context.Context, n *models.Negotiation) {
	signedAt := s.now()

	if err := s.logDeal(ctx, n, signedAt); err != nil {
		if errors.Is(err, common.ErrorSinkDisabled) {
			s.logger.Debug(ctx, "log sink disabled", "id", n.ID)
		} else {
			s.logger.Warn(ctx, "log sink append failed", "id", n.ID, "error", err)
			s.send(ctx, n.Initiator.ID, chat.Text(sinkWarningText(n)))
		}
	}

	var links []string
	png, renderErr := s.render(n, signedAt)
	if renderErr != nil {
		s.logger.Error(ctx, "document rendering failed", "id", n.ID, "error", renderErr)
	} else if s.deps.Archiver != nil {
		url, err := s.deps.Archiver.Store(ctx, documentKey(n, signedAt), png)
		if err != nil {
			s.logger.Warn(ctx, "document archive failed", "id", n.ID, "error", err)
		} else {
			links = append(links, "Archiv: "+url)
		}
	}
	if s.deps.Sealer != nil {
		token, err := s.deps.Sealer.Issue(n, signedAt)
		if err != nil {
			s.logger.Warn(ctx, "seal issue failed", "id", n.ID, "error", err)
		} else if s.config.SealBaseURL != "" {
			links = append(links, "Siegel: "+s.config.SealBaseURL+token)
		}
	}

	var file *chat.File
	if renderErr == nil {
		file = &chat.File{Name: documentFileName(n), ContentType: "image/png", Data: png}
	}

	s.send(ctx, n.Initiator.ID, acceptedMessage(n, models.RoleInitiator, file))
	s.send(ctx, n.Counterparty.ID, acceptedMessage(n, models.RoleCounterparty, file))
	s.announce(ctx, s.acceptedChannel(n), acceptedAnnouncement(n, file, links))

	if n.Kind == models.KindTreaty {
		if err := s.deps.Treaties.Save(ctx, models.ActiveTreatyFrom(n, signedAt)); err != nil {
			s.logger.Error(ctx, "cannot store active treaty", "id", n.ID, "error", err)
		}
	}
}

func (s *Service) render(n *models.Negotiation, signedAt time.Time) ([]byte, error) {
	if s.deps.Renderer == nil {
		return nil, errors.New("no renderer configured")
	}
	return s.deps.Renderer.Render(n, signedAt)
}

// Pending lists the caller's negotiations that have not resolved yet.
func (s *Service) Pending(ctx context.Context, partyID string) ([]*models.Negotiation, error) {
	return s.deps.Store.ListActive(ctx, models.PartyFilter{PartyID: partyID})
}

// ActiveTreaties lists the caller's running treaties.
func (s *Service) ActiveTreaties(ctx context.Context, partyID string) ([]models.ActiveTreaty, error) {
	return s.deps.Treaties.ListActive(ctx, models.PartyFilter{PartyID: partyID})
}

func documentKey(n *models.Negotiation, signedAt time.Time) string {
	return fmt.Sprintf("documents/%d/%02d/%s.png", signedAt.Year(), signedAt.Month(), n.ID)
}

func documentFileName(n *models.Negotiation) string {
	if n.Kind == models.KindTreaty {
		return "vertrag.png"
	}
	return "handelsvertrag.png"
}
