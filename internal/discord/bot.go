package discord

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
	"github.com/gustav-de-Mando/KuratorV1/internal/replies"
	"github.com/gustav-de-Mando/KuratorV1/internal/services/development"
	"github.com/gustav-de-Mando/KuratorV1/internal/services/negotiation"
)

type Negotiations interface {
	ProposeTrade(ctx context.Context, p negotiation.TradeProposal) (*models.Negotiation, error)
	ProposeTreaty(ctx context.Context, p negotiation.TreatyProposal) (*models.Negotiation, error)
	Start(ctx context.Context, id string)
	ActiveTreaties(ctx context.Context, partyID string) ([]models.ActiveTreaty, error)
}

type Developments interface {
	Perform(ctx context.Context, o development.Order) (development.Result, error)
}

type ReplyDispatcher interface {
	Dispatch(msg replies.Incoming) bool
}

type Deps struct {
	Session      Session
	Messenger    chat.Messenger
	Negotiations Negotiations
	Developments Developments
	Replies      ReplyDispatcher
}

type Options struct {
	// GuildID registers commands for one guild; empty registers them globally.
	GuildID           string
	ModRoles          []string
	DefaultTreatyDays int
}

type handler func(ctx context.Context, i *discordgo.InteractionCreate) error

type Bot struct {
	deps     Deps
	opts     Options
	logger   logging.Logger
	handlers map[string]handler

	ctx       context.Context
	mu        sync.RWMutex
	selfID    string
	dms       map[string]bool // channel id -> one-to-one private channel
	ready     chan struct{}
	readyOnce sync.Once
	removers  []func()
}

func New(deps Deps, opts Options, logger logging.Logger) *Bot {
	if opts.DefaultTreatyDays < 1 {
		opts.DefaultTreatyDays = 7
	}
	b := &Bot{
		deps:   deps,
		opts:   opts,
		logger: logger.With("module", "discord"),
		ctx:    context.Background(),
		ready:  make(chan struct{}),
		dms:    make(map[string]bool),
	}
	b.handlers = map[string]handler{
		cmdTrade:    b.handleTrade,
		cmdTreaty:   b.handleTreaty,
		cmdTreaties: b.handleTreaties,
		cmdDevelop:  b.handleDevelop,
		cmdKick:     b.handleKick,
		cmdBan:      b.handleBan,
		cmdClear:    b.handleClear,
		cmdPing:     b.handlePing,
		cmdHelp:     b.handleHelp,
	}
	return b
}

// Open registers the event handlers and connects. Negotiations started
// from commands run under ctx.
func (b *Bot) Open(ctx context.Context) error {
	b.ctx = ctx
	b.removers = append(b.removers,
		b.deps.Session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) { b.HandleReady(r) }),
		b.deps.Session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) { b.HandleInteraction(i) }),
		b.deps.Session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) { b.HandleMessage(m) }),
	)
	if err := b.deps.Session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	for _, remove := range b.removers {
		remove()
	}
	b.removers = nil
	return b.deps.Session.Close()
}

// Ready is closed after the first Ready event has been handled and the
// commands are registered.
func (b *Bot) Ready() <-chan struct{} { return b.ready }

func (b *Bot) HandleReady(r *discordgo.Ready) {
	if r.User == nil {
		b.logger.Error(b.ctx, "ready event without user")
		return
	}
	b.mu.Lock()
	b.selfID = r.User.ID
	b.mu.Unlock()

	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}
	if _, err := b.deps.Session.ApplicationCommandBulkOverwrite(appID, b.opts.GuildID, Commands()); err != nil {
		b.logger.Error(b.ctx, "command registration failed", "error", err)
	} else {
		b.logger.Info(b.ctx, "commands registered", "guild", b.opts.GuildID, "count", len(Commands()))
	}

	b.logger.Info(b.ctx, "connected", "user", r.User.Username)
	b.readyOnce.Do(func() { close(b.ready) })
}

func (b *Bot) HandleInteraction(i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	h, ok := b.handlers[name]
	if !ok {
		b.logger.Warn(b.ctx, "unknown command", "command", name)
		return
	}
	if err := h(b.ctx, i); err != nil {
		b.logger.Error(b.ctx, "command failed", "command", name, "user", invoker(i).ID, "error", err)
	}
}

// HandleMessage forwards direct messages to the reply router.
func (b *Bot) HandleMessage(m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	b.mu.RLock()
	self := b.selfID
	b.mu.RUnlock()
	if m.Author.ID == self {
		return
	}
	if b.deps.Replies.Dispatch(replies.Incoming{
		AuthorID: m.Author.ID,
		Direct:   m.GuildID == "" && b.privateChannel(m.ChannelID),
		Content:  m.Content,
	}) {
		b.logger.Debug(b.ctx, "reply routed", "user", m.Author.ID)
	}
}

// privateChannel reports whether channelID is a one-to-one DM. Group DMs
// have no guild either, so the channel type decides.
func (b *Bot) privateChannel(channelID string) bool {
	b.mu.RLock()
	dm, ok := b.dms[channelID]
	b.mu.RUnlock()
	if ok {
		return dm
	}

	ch, err := b.deps.Session.Channel(channelID, discordgo.WithContext(b.ctx))
	if err != nil {
		b.logger.Warn(b.ctx, "cannot resolve channel type", "channel", channelID, "error", err)
		return false
	}
	dm = ch.Type == discordgo.ChannelTypeDM

	b.mu.Lock()
	b.dms[channelID] = dm
	b.mu.Unlock()
	return dm
}

func invoker(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

func displayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func (b *Bot) respond(i *discordgo.InteractionCreate, msg chat.Message, ephemeral bool) error {
	return b.deps.Session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: responseData(msg, ephemeral),
	})
}

func (b *Bot) deferReply(i *discordgo.InteractionCreate, ephemeral bool) error {
	return b.deps.Session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags(ephemeral)},
	})
}

func (b *Bot) followup(i *discordgo.InteractionCreate, msg chat.Message, ephemeral bool) error {
	_, err := b.deps.Session.FollowupMessageCreate(i.Interaction, true, webhookParams(msg, ephemeral))
	return err
}

// roles returns the guild's roles keyed by id.
func (b *Bot) roles(guildID string) (map[string]*discordgo.Role, error) {
	list, err := b.deps.Session.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*discordgo.Role, len(list))
	for _, r := range list {
		out[r.ID] = r
	}
	return out, nil
}

// nation is the name of the member's lowest role other than @everyone,
// which is how countries are assigned on the server.
func nation(guildID string, roleIDs []string, roles map[string]*discordgo.Role) string {
	var held []*discordgo.Role
	for _, id := range roleIDs {
		if r, ok := roles[id]; ok && id != guildID {
			held = append(held, r)
		}
	}
	if len(held) == 0 {
		return ""
	}
	sort.Slice(held, func(a, b int) bool { return held[a].Position < held[b].Position })
	return held[0].Name
}

func (b *Bot) isModerator(guildID string, m *discordgo.Member, perm int64) (bool, error) {
	if m == nil {
		return false, nil
	}
	if m.Permissions&(perm|discordgo.PermissionAdministrator) != 0 {
		return true, nil
	}
	roles, err := b.roles(guildID)
	if err != nil {
		return false, err
	}
	for _, id := range m.Roles {
		r, ok := roles[id]
		if !ok {
			continue
		}
		for _, name := range b.opts.ModRoles {
			if r.Name == name {
				return true, nil
			}
		}
	}
	return false, nil
}
