package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
)

func (b *Bot) handlePing(ctx context.Context, i *discordgo.InteractionCreate) error {
	latency := b.deps.Session.HeartbeatLatency().Milliseconds()
	embed := &chat.Embed{Title: "🏓 Pong!", Color: chat.ColorGreen}
	embed.AddField("Websocket Latency", fmt.Sprintf("%dms", latency), true)
	return b.respond(i, chat.Message{Embed: embed}, false)
}

func (b *Bot) handleHelp(ctx context.Context, i *discordgo.InteractionCreate) error {
	embed := &chat.Embed{
		Title:       "Empire IV - Kurator",
		Description: "Der Kurator verwaltet Diplomatie, Handel und Ausbau im Empire IV Rollenspiel.",
		Color:       chat.ColorBlue,
	}
	embed.AddField("📜 Verträge", "Schließe Verträge mit `/vertrag` und zeige deine aktiven Verträge mit `/vertraege`.", false).
		AddField("💰 Handel", "Schlage mit `/handelsvertrag` einen Warentausch vor. Beide Seiten bestätigen per Direktnachricht mit **ja** oder **nein**.", false).
		AddField("🏗️ Ausbau", "Baue Infrastruktur aus oder hebe Einheiten aus mit `/ausbau`.", false).
		AddField("🛠️ Moderation", "`/kick`, `/ban` und `/clear` für Moderatoren.", false)
	return b.respond(i, chat.Message{Embed: embed}, true)
}
