package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

type options struct {
	byName   map[string]*discordgo.ApplicationCommandInteractionDataOption
	resolved *discordgo.ApplicationCommandInteractionDataResolved
}

func parseOptions(i *discordgo.InteractionCreate) options {
	data := i.ApplicationCommandData()
	o := options{byName: make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options)), resolved: data.Resolved}
	for _, opt := range data.Options {
		o.byName[opt.Name] = opt
	}
	return o
}

func (o options) str(name string) string {
	if opt, ok := o.byName[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

func (o options) integer(name string, def int64) int64 {
	if opt, ok := o.byName[name]; ok && opt.Type == discordgo.ApplicationCommandOptionInteger {
		return opt.IntValue()
	}
	return def
}

// user returns the target of a user option with its guild member when
// Discord resolved one.
func (o options) user(name string) (*discordgo.User, *discordgo.Member) {
	opt, ok := o.byName[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionUser {
		return nil, nil
	}
	id, _ := opt.Value.(string)
	if id == "" {
		return nil, nil
	}
	user := &discordgo.User{ID: id}
	var member *discordgo.Member
	if o.resolved != nil {
		if u, ok := o.resolved.Users[id]; ok && u != nil {
			user = u
		}
		member = o.resolved.Members[id]
	}
	return user, member
}
