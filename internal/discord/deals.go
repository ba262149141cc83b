package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
	"github.com/gustav-de-Mando/KuratorV1/internal/services/development"
	"github.com/gustav-de-Mando/KuratorV1/internal/services/negotiation"
)

const (
	guildOnlyText   = "Dieser Befehl kann nur auf dem Server verwendet werden."
	noPartnerText   = "Bitte gib einen Vertragspartner an."
	noNationText    = "Beide Vertragspartner müssen ein Land (Rolle) haben!"
	dmClosedText    = "Ich kann dir keine Direktnachricht senden. Bitte erlaube Direktnachrichten von Servermitgliedern und versuche es erneut."
	genericFailText = "Es ist ein Fehler aufgetreten. Bitte versuche es später erneut."
)

// followupError reports err to the invoker. Errors that are not the
// player's fault are returned for logging.
func (b *Bot) followupError(i *discordgo.InteractionCreate, err error) error {
	var text string
	switch {
	case errors.Is(err, common.ErrorValidation):
		text = common.UserMessage(err, genericFailText)
	case errors.Is(err, common.ErrorDeliveryRefused):
		text = dmClosedText
	default:
		text = genericFailText
	}
	if ferr := b.followup(i, chat.Text(text), true); ferr != nil {
		return errors.Join(err, ferr)
	}
	if errors.Is(err, common.ErrorValidation) || errors.Is(err, common.ErrorDeliveryRefused) {
		return nil
	}
	return err
}

// parties builds both sides of a deal. Nations given as options win over
// the members' roles.
func (b *Bot) parties(i *discordgo.InteractionCreate, o options, partner *discordgo.User, partnerMember *discordgo.Member) (models.Party, models.Party, error) {
	self := invoker(i)
	initiator := models.Party{ID: self.ID, DisplayName: displayName(i.Member, self), Nation: o.str("land")}
	counterparty := models.Party{ID: partner.ID, DisplayName: displayName(partnerMember, partner), Nation: o.str("partner_land")}

	if initiator.Nation == "" || counterparty.Nation == "" {
		roles, err := b.roles(i.GuildID)
		if err != nil {
			return initiator, counterparty, fmt.Errorf("load guild roles: %w", err)
		}
		if initiator.Nation == "" {
			initiator.Nation = nation(i.GuildID, i.Member.Roles, roles)
		}
		if counterparty.Nation == "" && partnerMember != nil {
			counterparty.Nation = nation(i.GuildID, partnerMember.Roles, roles)
		}
	}

	if initiator.Nation == "" || counterparty.Nation == "" {
		return initiator, counterparty, common.NewValidationError(noNationText)
	}
	return initiator, counterparty, nil
}

func (b *Bot) handleTrade(ctx context.Context, i *discordgo.InteractionCreate) error {
	if i.Member == nil {
		return b.respond(i, chat.Text(guildOnlyText), true)
	}
	o := parseOptions(i)
	partner, partnerMember := o.user("partner")
	if partner == nil {
		return b.respond(i, chat.Text(noPartnerText), true)
	}
	offer, err := models.ParseResource(o.str("angebot_ressource"))
	if err != nil {
		return b.respond(i, chat.Text("Unbekannte Ressource: "+o.str("angebot_ressource")), true)
	}
	request, err := models.ParseResource(o.str("wunsch_ressource"))
	if err != nil {
		return b.respond(i, chat.Text("Unbekannte Ressource: "+o.str("wunsch_ressource")), true)
	}

	if err := b.deferReply(i, true); err != nil {
		return err
	}

	initiator, counterparty, err := b.parties(i, o, partner, partnerMember)
	if err != nil {
		return b.followupError(i, err)
	}

	n, err := b.deps.Negotiations.ProposeTrade(ctx, negotiation.TradeProposal{
		Initiator:         initiator,
		Counterparty:      counterparty,
		CounterpartyIsBot: partner.Bot,
		Offer:             models.Goods{Resource: offer, Amount: o.integer("angebot_menge", 0)},
		Request:           models.Goods{Resource: request, Amount: o.integer("wunsch_menge", 0)},
		BreachClause:      o.str("vertragsbruch_klausel"),
		Notes:             o.str("anmerkungen"),
		OriginChannelID:   i.ChannelID,
	})
	if err != nil {
		return b.followupError(i, err)
	}

	b.deps.Negotiations.Start(ctx, n.ID)
	return b.followup(i, chat.Text("Der Handelsvorschlag wurde erstellt. Bitte bestätige ihn in deinen Direktnachrichten."), true)
}

func (b *Bot) handleTreaty(ctx context.Context, i *discordgo.InteractionCreate) error {
	if i.Member == nil {
		return b.respond(i, chat.Text(guildOnlyText), true)
	}
	o := parseOptions(i)
	partner, partnerMember := o.user("partner")
	if partner == nil {
		return b.respond(i, chat.Text(noPartnerText), true)
	}
	kind, err := models.ParseTreatyKind(o.str("vertragstyp"))
	if err != nil {
		return b.respond(i, chat.Text("Ungültiger Vertragstyp! Bitte wähle einen der vorgegebenen Typen."), true)
	}

	if err := b.deferReply(i, true); err != nil {
		return err
	}

	initiator, counterparty, err := b.parties(i, o, partner, partnerMember)
	if err != nil {
		return b.followupError(i, err)
	}

	n, err := b.deps.Negotiations.ProposeTreaty(ctx, negotiation.TreatyProposal{
		Initiator:         initiator,
		Counterparty:      counterparty,
		CounterpartyIsBot: partner.Bot,
		Type:              kind,
		DurationDays:      int(o.integer("laufzeit", int64(b.opts.DefaultTreatyDays))),
		BreachClause:      o.str("vertragsbruch_klausel"),
		Notes:             o.str("anmerkungen"),
		OriginChannelID:   i.ChannelID,
	})
	if err != nil {
		return b.followupError(i, err)
	}

	b.deps.Negotiations.Start(ctx, n.ID)
	return b.followup(i, chat.Text(fmt.Sprintf("Der %s wurde vorgeschlagen. Bitte bestätige ihn in deinen Direktnachrichten.", kind)), true)
}

func (b *Bot) handleTreaties(ctx context.Context, i *discordgo.InteractionCreate) error {
	self := invoker(i)
	list, err := b.deps.Negotiations.ActiveTreaties(ctx, self.ID)
	if err != nil {
		if rerr := b.respond(i, chat.Text(genericFailText), true); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	if len(list) == 0 {
		return b.respond(i, chat.Text("Du hast derzeit keine aktiven Verträge."), true)
	}

	grouped := make(map[models.TreatyKind][]string)
	for _, t := range list {
		other := t.Other(self.ID)
		grouped[t.Type] = append(grouped[t.Type], fmt.Sprintf("%s von %s (bis %s)", other.Mention(), other.Nation, t.ExpiresAt.Format("02.01.2006")))
	}

	embed := &chat.Embed{
		Title:       "Deine aktiven Verträge",
		Description: "Hier ist eine Liste all deiner aktiven diplomatischen Verträge:",
		Color:       chat.ColorBlue,
	}
	for _, k := range models.TreatyKinds {
		if lines, ok := grouped[k]; ok {
			embed.AddField(fmt.Sprintf("%s (%d/%d)", k, len(lines), k.Limit()), strings.Join(lines, "\n"), false)
		}
	}
	return b.respond(i, chat.Message{Embed: embed}, true)
}

func (b *Bot) handleDevelop(ctx context.Context, i *discordgo.InteractionCreate) error {
	if i.Member == nil {
		return b.respond(i, chat.Text(guildOnlyText), true)
	}
	o := parseOptions(i)
	self := invoker(i)

	if err := b.deferReply(i, true); err != nil {
		return err
	}

	party := models.Party{ID: self.ID, DisplayName: displayName(i.Member, self), Nation: o.str("land")}
	if party.Nation == "" {
		roles, err := b.roles(i.GuildID)
		if err != nil {
			return b.followupError(i, fmt.Errorf("load guild roles: %w", err))
		}
		party.Nation = nation(i.GuildID, i.Member.Roles, roles)
	}

	res, err := b.deps.Developments.Perform(ctx, development.Order{
		Party:     party,
		Type:      o.str("ausbau_art"),
		Level:     int(o.integer("level", 0)),
		Area:      int(o.integer("gebiet", 0)),
		Count:     int(o.integer("anzahl", 1)),
		ChannelID: i.ChannelID,
	})
	if err != nil {
		return b.followupError(i, err)
	}

	embed := res.Embed
	return b.followup(i, chat.Message{Content: res.Warning, Embed: &embed}, true)
}
