package bot

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// InteractionHandler handles one routed interaction.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

type prefixRoute struct {
	prefix  string
	handler InteractionHandler
}

// Dispatcher fans gateway events out to feature handlers. It handles a closed
// set of event kinds; interactions are routed by type, then by command name or
// custom id prefix.
type Dispatcher struct {
	logger *slog.Logger

	commands     map[string]InteractionHandler
	autocomplete map[string]InteractionHandler
	components   []prefixRoute
	modals       []prefixRoute

	ready             []func(*discordgo.Session, *discordgo.Ready)
	messageCreate     []func(*discordgo.Session, *discordgo.MessageCreate)
	messageDelete     []func(*discordgo.Session, *discordgo.MessageDelete)
	voiceStateUpdate  []func(*discordgo.Session, *discordgo.VoiceStateUpdate)
	guildMemberAdd    []func(*discordgo.Session, *discordgo.GuildMemberAdd)
	guildMemberRemove []func(*discordgo.Session, *discordgo.GuildMemberRemove)
	guildBanAdd       []func(*discordgo.Session, *discordgo.GuildBanAdd)
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		logger:       logger.With("logger", "dispatcher"),
		commands:     make(map[string]InteractionHandler),
		autocomplete: make(map[string]InteractionHandler),
	}
}

// Command routes the application command name to h.
func (d *Dispatcher) Command(name string, h InteractionHandler) {
	if _, dup := d.commands[name]; dup {
		panic("dispatcher: duplicate command " + name)
	}
	d.commands[name] = h
}

// Autocomplete routes autocomplete requests for command name to h.
func (d *Dispatcher) Autocomplete(name string, h InteractionHandler) {
	d.autocomplete[name] = h
}

// Component routes message components whose custom id starts with prefix to h.
func (d *Dispatcher) Component(prefix string, h InteractionHandler) {
	d.components = append(d.components, prefixRoute{prefix: prefix, handler: h})
}

// Modal routes modal submissions whose custom id starts with prefix to h.
func (d *Dispatcher) Modal(prefix string, h InteractionHandler) {
	d.modals = append(d.modals, prefixRoute{prefix: prefix, handler: h})
}

func (d *Dispatcher) OnReady(h func(*discordgo.Session, *discordgo.Ready)) {
	d.ready = append(d.ready, h)
}

func (d *Dispatcher) OnMessageCreate(h func(*discordgo.Session, *discordgo.MessageCreate)) {
	d.messageCreate = append(d.messageCreate, h)
}

func (d *Dispatcher) OnMessageDelete(h func(*discordgo.Session, *discordgo.MessageDelete)) {
	d.messageDelete = append(d.messageDelete, h)
}

func (d *Dispatcher) OnVoiceStateUpdate(h func(*discordgo.Session, *discordgo.VoiceStateUpdate)) {
	d.voiceStateUpdate = append(d.voiceStateUpdate, h)
}

func (d *Dispatcher) OnGuildMemberAdd(h func(*discordgo.Session, *discordgo.GuildMemberAdd)) {
	d.guildMemberAdd = append(d.guildMemberAdd, h)
}

func (d *Dispatcher) OnGuildMemberRemove(h func(*discordgo.Session, *discordgo.GuildMemberRemove)) {
	d.guildMemberRemove = append(d.guildMemberRemove, h)
}

func (d *Dispatcher) OnGuildBanAdd(h func(*discordgo.Session, *discordgo.GuildBanAdd)) {
	d.guildBanAdd = append(d.guildBanAdd, h)
}

// Attach subscribes the dispatcher to the session's gateway events.
func (d *Dispatcher) Attach(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, e *discordgo.Ready) {
		for _, h := range d.ready {
			d.safely("ready", func() { h(s, e) })
		}
	})
	s.AddHandler(d.HandleInteraction)
	s.AddHandler(func(s *discordgo.Session, e *discordgo.MessageCreate) {
		for _, h := range d.messageCreate {
			d.safely("message_create", func() { h(s, e) })
		}
	})
	s.AddHandler(func(s *discordgo.Session, e *discordgo.MessageDelete) {
		for _, h := range d.messageDelete {
			d.safely("message_delete", func() { h(s, e) })
		}
	})
	s.AddHandler(func(s *discordgo.Session, e *discordgo.VoiceStateUpdate) {
		for _, h := range d.voiceStateUpdate {
			d.safely("voice_state_update", func() { h(s, e) })
		}
	})
	s.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
		for _, h := range d.guildMemberAdd {
			d.safely("guild_member_add", func() { h(s, e) })
		}
	})
	s.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberRemove) {
		for _, h := range d.guildMemberRemove {
			d.safely("guild_member_remove", func() { h(s, e) })
		}
	})
	s.AddHandler(func(s *discordgo.Session, e *discordgo.GuildBanAdd) {
		for _, h := range d.guildBanAdd {
			d.safely("guild_ban_add", func() { h(s, e) })
		}
	})
}

// HandleInteraction routes one interaction.
func (d *Dispatcher) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var (
		h   InteractionHandler
		key string
	)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		key = i.ApplicationCommandData().Name
		h = d.commands[key]
	case discordgo.InteractionApplicationCommandAutocomplete:
		key = i.ApplicationCommandData().Name
		h = d.autocomplete[key]
	case discordgo.InteractionMessageComponent:
		key = i.MessageComponentData().CustomID
		h = matchPrefix(d.components, key)
	case discordgo.InteractionModalSubmit:
		key = i.ModalSubmitData().CustomID
		h = matchPrefix(d.modals, key)
	default:
		d.logger.Debug("ignoring interaction", "type", i.Type.String())
		return
	}

	if h == nil {
		d.logger.Warn("no handler for interaction", "type", i.Type.String(), "key", key)
		return
	}
	d.safely("interaction "+key, func() { h(s, i) })
}

func matchPrefix(routes []prefixRoute, customID string) InteractionHandler {
	for _, r := range routes {
		if strings.HasPrefix(customID, r.prefix) {
			return r.handler
		}
	}
	return nil
}

func (d *Dispatcher) safely(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked",
				"event", event,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
