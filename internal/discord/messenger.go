package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
	"github.com/gustav-de-Mando/KuratorV1/internal/common"
)

// Messenger delivers chat messages through a Session.
type Messenger struct {
	session Session
}

func NewMessenger(s Session) *Messenger {
	return &Messenger{session: s}
}

func refused(err error) bool {
	var rest *discordgo.RESTError
	return errors.As(err, &rest) && rest.Message != nil &&
		rest.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser
}

func forbidden(err error) bool {
	var rest *discordgo.RESTError
	return errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusForbidden
}

func (m *Messenger) SendDirect(ctx context.Context, userID string, msg chat.Message) error {
	ch, err := m.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm with %s: %w", userID, err)
	}
	if _, err := m.session.ChannelMessageSendComplex(ch.ID, messageSend(msg), discordgo.WithContext(ctx)); err != nil {
		if refused(err) {
			return fmt.Errorf("%w: %v", common.ErrorDeliveryRefused, err)
		}
		return fmt.Errorf("send dm to %s: %w", userID, err)
	}
	return nil
}

func (m *Messenger) SendChannel(ctx context.Context, channelID string, msg chat.Message) error {
	if _, err := m.session.ChannelMessageSendComplex(channelID, messageSend(msg), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send to channel %s: %w", channelID, err)
	}
	return nil
}

func embed(e *chat.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	if e.ImageFile != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + e.ImageFile}
	}
	return out
}

func embeds(msg chat.Message) []*discordgo.MessageEmbed {
	if msg.Embed == nil {
		return nil
	}
	return []*discordgo.MessageEmbed{embed(msg.Embed)}
}

func files(msg chat.Message) []*discordgo.File {
	var out []*discordgo.File
	for _, f := range msg.Files {
		out = append(out, &discordgo.File{Name: f.Name, ContentType: f.ContentType, Reader: bytes.NewReader(f.Data)})
	}
	return out
}

func messageSend(msg chat.Message) *discordgo.MessageSend {
	return &discordgo.MessageSend{Content: msg.Content, Embeds: embeds(msg), Files: files(msg)}
}

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func responseData(msg chat.Message, ephemeral bool) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content: msg.Content,
		Embeds:  embeds(msg),
		Files:   files(msg),
		Flags:   flags(ephemeral),
	}
}

func webhookParams(msg chat.Message, ephemeral bool) *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Content: msg.Content,
		Embeds:  embeds(msg),
		Files:   files(msg),
		Flags:   flags(ephemeral),
	}
}
