package discord

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
	"github.com/gustav-de-Mando/KuratorV1/internal/replies"
	"github.com/gustav-de-Mando/KuratorV1/internal/services/development"
	"github.com/gustav-de-Mando/KuratorV1/internal/services/negotiation"
)

type sentMessage struct {
	ChannelID string
	Data      *discordgo.MessageSend
}

type fakeSession struct {
	mu sync.Mutex

	roles    []*discordgo.Role
	channels map[string]discordgo.ChannelType
	messages []*discordgo.Message
	latency  time.Duration

	sendErr   map[string]error // by channel id
	kickErr   error
	banErr    error
	deleteErr error

	handlers   int
	opened     bool
	closed     bool
	registered []*discordgo.ApplicationCommand
	appID      string
	guildID    string
	responses  []*discordgo.InteractionResponse
	followups  []*discordgo.WebhookParams
	sent       []sentMessage
	kicked     []string
	banned     []string
	deleted    []string
	fetchLimit int
	lookups    int
}

func (f *fakeSession) AddHandler(interface{}) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.handlers--
	}
}

func (f *fakeSession) Open() error  { f.opened = true; return nil }
func (f *fakeSession) Close() error { f.closed = true; return nil }

func (f *fakeSession) HeartbeatLatency() time.Duration { return f.latency }

func (f *fakeSession) ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appID, f.guildID, f.registered = appID, guildID, commands
	return commands, nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	typ, ok := f.channels[channelID]
	if !ok {
		return nil, restError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel)
	}
	return &discordgo.Channel{ID: channelID, Type: typ}, nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErr[channelID]; err != nil {
		return nil, err
	}
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Data: data})
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessages(_ string, limit int, _, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchLimit = limit
	if limit < len(f.messages) {
		return f.messages[:limit], nil
	}
	return f.messages, nil
}

func (f *fakeSession) ChannelMessagesBulkDelete(_ string, messages []string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, messages...)
	return nil
}

func (f *fakeSession) GuildRoles(string, ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeSession) GuildMemberDeleteWithReason(_, userID, _ string, _ ...discordgo.RequestOption) error {
	if f.kickErr != nil {
		return f.kickErr
	}
	f.kicked = append(f.kicked, userID)
	return nil
}

func (f *fakeSession) GuildBanCreateWithReason(_, userID, _ string, _ int, _ ...discordgo.RequestOption) error {
	if f.banErr != nil {
		return f.banErr
	}
	f.banned = append(f.banned, userID)
	return nil
}

func restError(status, code int) *discordgo.RESTError {
	return &discordgo.RESTError{
		Response:     &http.Response{StatusCode: status, Status: fmt.Sprintf("%d", status)},
		ResponseBody: []byte(`{}`),
		Message:      &discordgo.APIErrorMessage{Code: code},
	}
}

type fakeNegotiations struct {
	trades   []negotiation.TradeProposal
	treaties []negotiation.TreatyProposal
	started  []string
	active   []models.ActiveTreaty
	err      error
}

func (f *fakeNegotiations) ProposeTrade(_ context.Context, p negotiation.TradeProposal) (*models.Negotiation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.trades = append(f.trades, p)
	return &models.Negotiation{ID: "trade-1"}, nil
}

func (f *fakeNegotiations) ProposeTreaty(_ context.Context, p negotiation.TreatyProposal) (*models.Negotiation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.treaties = append(f.treaties, p)
	return &models.Negotiation{ID: "treaty-1"}, nil
}

func (f *fakeNegotiations) Start(_ context.Context, id string) { f.started = append(f.started, id) }

func (f *fakeNegotiations) ActiveTreaties(context.Context, string) ([]models.ActiveTreaty, error) {
	return f.active, f.err
}

type fakeDevelopments struct {
	orders []development.Order
	result development.Result
	err    error
}

func (f *fakeDevelopments) Perform(_ context.Context, o development.Order) (development.Result, error) {
	f.orders = append(f.orders, o)
	return f.result, f.err
}

type fakeReplies struct {
	got []replies.Incoming
}

func (f *fakeReplies) Dispatch(msg replies.Incoming) bool {
	f.got = append(f.got, msg)
	return true
}

type harness struct {
	bot     *Bot
	session *fakeSession
	negs    *fakeNegotiations
	devs    *fakeDevelopments
	replies *fakeReplies
}

func newHarness() *harness {
	h := &harness{
		session: &fakeSession{
			roles: []*discordgo.Role{
				{ID: "guild", Name: "@everyone", Position: 0},
				{ID: "r-prussia", Name: "Preußen", Position: 2},
				{ID: "r-saxony", Name: "Sachsen", Position: 3},
				{ID: "r-vip", Name: "Spieler", Position: 9},
				{ID: "r-mod", Name: "Moderator", Position: 20},
			},
		},
		negs:    &fakeNegotiations{},
		devs:    &fakeDevelopments{},
		replies: &fakeReplies{},
	}
	h.bot = New(Deps{
		Session:      h.session,
		Messenger:    NewMessenger(h.session),
		Negotiations: h.negs,
		Developments: h.devs,
		Replies:      h.replies,
	}, Options{ModRoles: []string{"Moderator"}}, logging.Nop())
	return h
}

type opt struct {
	name  string
	value any
}

func member(id, name string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id, Username: name}, Roles: roles}
}

// command builds a guild slash command interaction. String values become
// string options, ints become integer options and *discordgo.Member values
// become resolved user options.
func command(name string, by *discordgo.Member, opts ...opt) *discordgo.InteractionCreate {
	data := discordgo.ApplicationCommandInteractionData{
		Name: name,
		Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
			Users:   map[string]*discordgo.User{},
			Members: map[string]*discordgo.Member{},
		},
	}
	for _, o := range opts {
		option := &discordgo.ApplicationCommandInteractionDataOption{Name: o.name}
		switch v := o.value.(type) {
		case string:
			option.Type, option.Value = discordgo.ApplicationCommandOptionString, v
		case int:
			option.Type, option.Value = discordgo.ApplicationCommandOptionInteger, float64(v)
		case *discordgo.Member:
			option.Type, option.Value = discordgo.ApplicationCommandOptionUser, v.User.ID
			data.Resolved.Users[v.User.ID] = v.User
			data.Resolved.Members[v.User.ID] = v
		}
		data.Options = append(data.Options, option)
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "guild",
		ChannelID: "chan-1",
		Member:    by,
		Data:      data,
	}}
}
