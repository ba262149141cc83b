package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
)

const (
	noPermissionText = "You don't have permission to use this command."
	// Discord refuses to bulk delete messages older than two weeks.
	bulkDeleteMaxAge = 14 * 24 * time.Hour
)

type removal struct {
	verb    string // kick, ban
	past    string // kicked, banned
	title   string
	perm    int64
	execute func(guildID, userID, reason string) error
}

func (b *Bot) handleKick(ctx context.Context, i *discordgo.InteractionCreate) error {
	return b.remove(ctx, i, removal{
		verb:  "kick",
		past:  "kicked",
		title: "Member Kicked",
		perm:  discordgo.PermissionKickMembers,
		execute: func(guildID, userID, reason string) error {
			return b.deps.Session.GuildMemberDeleteWithReason(guildID, userID, reason)
		},
	})
}

func (b *Bot) handleBan(ctx context.Context, i *discordgo.InteractionCreate) error {
	return b.remove(ctx, i, removal{
		verb:  "ban",
		past:  "banned",
		title: "Member Banned",
		perm:  discordgo.PermissionBanMembers,
		execute: func(guildID, userID, reason string) error {
			return b.deps.Session.GuildBanCreateWithReason(guildID, userID, reason, 0)
		},
	})
}

func (b *Bot) remove(ctx context.Context, i *discordgo.InteractionCreate, r removal) error {
	if i.Member == nil {
		return b.respond(i, chat.Text("This command can only be used in a server."), true)
	}
	ok, err := b.isModerator(i.GuildID, i.Member, r.perm)
	if err != nil {
		return err
	}
	if !ok {
		return b.respond(i, chat.Text(noPermissionText), true)
	}

	o := parseOptions(i)
	target, _ := o.user("member")
	if target == nil {
		return b.respond(i, chat.Text("Please specify a member."), true)
	}
	self := invoker(i)
	if target.ID == self.ID {
		return b.respond(i, chat.Text(fmt.Sprintf("You cannot %s yourself.", r.verb)), true)
	}
	reason := o.str("reason")

	// Tell the member first; once removed they may share no server with the bot.
	dm := &chat.Embed{Title: fmt.Sprintf("You have been %s from the server", r.past), Color: chat.ColorRed}
	if reason != "" {
		dm.AddField("Reason", reason, false)
	}
	if err := b.deps.Messenger.SendDirect(ctx, target.ID, chat.Message{Embed: dm}); err != nil {
		b.logger.Debug(ctx, "moderation notice not delivered", "user", target.ID, "error", err)
	}

	if err := r.execute(i.GuildID, target.ID, reason); err != nil {
		text := fmt.Sprintf("An error occurred while trying to %s the member.", r.verb)
		if forbidden(err) {
			text = fmt.Sprintf("I don't have permission to %s that member.", r.verb)
		}
		if rerr := b.respond(i, chat.Text(text), true); rerr != nil {
			return rerr
		}
		return err
	}

	embed := &chat.Embed{Title: r.title, Color: chat.ColorRed}
	embed.AddField("Member", fmt.Sprintf("<@%s> (%s)", target.ID, target.Username), false).
		AddField("Moderator", fmt.Sprintf("<@%s>", self.ID), false)
	if reason != "" {
		embed.AddField("Reason", reason, false)
	}
	b.logger.Info(ctx, "member removed", "action", r.verb, "target", target.ID, "moderator", self.ID)
	return b.respond(i, chat.Message{Embed: embed}, false)
}

func (b *Bot) handleClear(ctx context.Context, i *discordgo.InteractionCreate) error {
	if i.Member == nil {
		return b.respond(i, chat.Text("This command can only be used in a server."), true)
	}
	ok, err := b.isModerator(i.GuildID, i.Member, discordgo.PermissionManageMessages)
	if err != nil {
		return err
	}
	if !ok {
		return b.respond(i, chat.Text(noPermissionText), true)
	}

	amount := int(parseOptions(i).integer("amount", 0))
	if amount <= 0 {
		return b.respond(i, chat.Text("Please specify a positive number of messages to delete."), true)
	}
	amount = min(amount, maxClear)

	if err := b.deferReply(i, true); err != nil {
		return err
	}

	msgs, err := b.deps.Session.ChannelMessages(i.ChannelID, amount, "", "", "")
	if err != nil {
		return b.clearFailed(i, err)
	}

	cutoff := time.Now().Add(-bulkDeleteMaxAge)
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Timestamp.IsZero() || m.Timestamp.After(cutoff) {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) > 0 {
		if err := b.deps.Session.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
			return b.clearFailed(i, err)
		}
	}

	b.logger.Info(ctx, "messages cleared", "channel", i.ChannelID, "count", len(ids))
	return b.followup(i, chat.Text(fmt.Sprintf("Successfully deleted %d messages.", len(ids))), true)
}

func (b *Bot) clearFailed(i *discordgo.InteractionCreate, err error) error {
	text := "An error occurred while deleting messages."
	if forbidden(err) {
		text = "I don't have permission to delete messages in this channel."
	}
	if ferr := b.followup(i, chat.Text(text), true); ferr != nil {
		return ferr
	}
	return err
}
