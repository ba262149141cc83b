package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/gustav-de-Mando/KuratorV1/internal/costs"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

const (
	cmdTrade     = "handelsvertrag"
	cmdTreaty    = "vertrag"
	cmdTreaties  = "vertraege"
	cmdDevelop   = "ausbau"
	cmdKick      = "kick"
	cmdBan       = "ban"
	cmdClear     = "clear"
	cmdPing      = "ping"
	cmdHelp      = "hilfe"
	maxClear     = 100
	maxTreatyDay = 365
)

func floatPtr(f float64) *float64 { return &f }

func resourceChoices() []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.Resources))
	for _, r := range models.Resources {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: r.String(), Value: r.String()})
	}
	return out
}

func treatyChoices() []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.TreatyKinds))
	for _, k := range models.TreatyKinds {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: k.String(), Value: k.String()})
	}
	return out
}

func developmentChoices() []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(costs.Developments))
	for _, d := range costs.Developments {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: string(d), Value: string(d)})
	}
	return out
}

func userOpt(name, desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionUser, Name: name, Description: desc, Required: true}
}

func stringOpt(name, desc string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: name, Description: desc, Required: required}
}

func intOpt(name, desc string, required bool, min float64) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionInteger, Name: name, Description: desc, Required: required, MinValue: floatPtr(min)}
}

func withChoices(o *discordgo.ApplicationCommandOption, c []*discordgo.ApplicationCommandOptionChoice) *discordgo.ApplicationCommandOption {
	o.Choices = c
	return o
}

func dealOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		stringOpt("land", "Dein Land (Standard: deine Rolle)", false),
		stringOpt("partner_land", "Land des Partners (Standard: seine Rolle)", false),
		stringOpt("vertragsbruch_klausel", "Eigene Vertragsbruchklausel", false),
		stringOpt("anmerkungen", "Zusätzliche Anmerkungen", false),
	}
}

// Commands returns every slash command the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	treatyDays := intOpt("laufzeit", "Dauer des Vertrags in Tagen (Standard: 7)", false, 1)
	treatyDays.MaxValue = maxTreatyDay

	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdTrade,
			Description: "Schlage einem anderen Herrscher einen Handelsvertrag vor",
			Options: append([]*discordgo.ApplicationCommandOption{
				userOpt("partner", "Der Handelspartner"),
				withChoices(stringOpt("angebot_ressource", "Ressource, die du lieferst", true), resourceChoices()),
				intOpt("angebot_menge", "Menge, die du lieferst", true, 1),
				withChoices(stringOpt("wunsch_ressource", "Ressource, die du erhältst", true), resourceChoices()),
				intOpt("wunsch_menge", "Menge, die du erhältst", true, 1),
			}, dealOptions()...),
		},
		{
			Name:        cmdTreaty,
			Description: "Schlage einem anderen Herrscher einen Vertrag vor",
			Options: append([]*discordgo.ApplicationCommandOption{
				userOpt("partner", "Der Vertragspartner"),
				withChoices(stringOpt("vertragstyp", "Art des Vertrags", true), treatyChoices()),
				treatyDays,
			}, dealOptions()...),
		},
		{
			Name:        cmdTreaties,
			Description: "Zeige deine aktiven Verträge",
		},
		{
			Name:        cmdDevelop,
			Description: "Führe einen Ausbau durch und trage ihn ins Handelsbuch ein",
			Options: []*discordgo.ApplicationCommandOption{
				withChoices(stringOpt("ausbau_art", "Art des Ausbaus", true), developmentChoices()),
				intOpt("level", "Ausbaustufe", true, 1),
				intOpt("gebiet", "Gebietsnummer (0 für Einheiten)", true, 0),
				intOpt("anzahl", "Anzahl der Einheiten (Standard: 1)", false, 1),
				stringOpt("land", "Dein Land (Standard: deine Rolle)", false),
			},
		},
		{
			Name:        cmdKick,
			Description: "Kick a member from the server",
			Options: []*discordgo.ApplicationCommandOption{
				userOpt("member", "The member to kick"),
				stringOpt("reason", "Reason for the kick", false),
			},
		},
		{
			Name:        cmdBan,
			Description: "Ban a member from the server",
			Options: []*discordgo.ApplicationCommandOption{
				userOpt("member", "The member to ban"),
				stringOpt("reason", "Reason for the ban", false),
			},
		},
		{
			Name:        cmdClear,
			Description: "Clear a specified number of messages",
			Options: []*discordgo.ApplicationCommandOption{
				intOpt("amount", "Number of messages to delete (max 100)", true, 1),
			},
		},
		{
			Name:        cmdPing,
			Description: "Check the bot's latency",
		},
		{
			Name:        cmdHelp,
			Description: "Hilfe und Übersicht über den Kurator",
		},
	}
}
