package discordtest

import "github.com/bwmarrin/discordgo"

// InteractionID and InteractionToken identify every interaction built here.
// Responses arrive at /interactions/{InteractionID}/{InteractionToken}/callback.
const (
	InteractionID    = "800000000000000001"
	InteractionToken = "interaction-token"
)

// CallbackPath is where InteractionRespond posts for interactions built here.
const CallbackPath = "/interactions/" + InteractionID + "/" + InteractionToken + "/callback"

// Invoker describes the member triggering an interaction.
type Invoker struct {
	GuildID   string
	ChannelID string
	UserID    string
	Roles     []string
}

func (inv Invoker) interaction(t discordgo.InteractionType, data discordgo.InteractionData) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        InteractionID,
		AppID:     BotUserID,
		Token:     InteractionToken,
		Type:      t,
		GuildID:   inv.GuildID,
		ChannelID: inv.ChannelID,
		Member: &discordgo.Member{
			User:  &discordgo.User{ID: inv.UserID, Username: "user" + inv.UserID},
			Roles: inv.Roles,
		},
		Data: data,
	}}
}

// Command builds a slash command interaction.
func (inv Invoker) Command(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return inv.interaction(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{
		ID:          "700000000000000001",
		Name:        name,
		CommandType: discordgo.ChatApplicationCommand,
		Options:     options,
	})
}

// UserCommand builds a user context menu interaction targeting targetID.
func (inv Invoker) UserCommand(name, targetID string) *discordgo.InteractionCreate {
	return inv.interaction(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{
		ID:          "700000000000000002",
		Name:        name,
		CommandType: discordgo.UserApplicationCommand,
		TargetID:    targetID,
	})
}

// Autocomplete builds an autocomplete request.
func (inv Invoker) Autocomplete(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return inv.interaction(discordgo.InteractionApplicationCommandAutocomplete, discordgo.ApplicationCommandInteractionData{
		ID:      "700000000000000001",
		Name:    name,
		Options: options,
	})
}

// Component builds a message component interaction.
func (inv Invoker) Component(customID string) *discordgo.InteractionCreate {
	return inv.interaction(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{
		CustomID:      customID,
		ComponentType: discordgo.ButtonComponent,
	})
}

// ModalSubmit builds a modal submission with one text input per field.
func (inv Invoker) ModalSubmit(customID string, fields map[string]string) *discordgo.InteractionCreate {
	var rows []discordgo.MessageComponent
	for id, value := range fields {
		rows = append(rows, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: id, Value: value},
		}})
	}
	return inv.interaction(discordgo.InteractionModalSubmit, discordgo.ModalSubmitInteractionData{
		CustomID:   customID,
		Components: rows,
	})
}

func UserOpt(name, userID string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name: name, Type: discordgo.ApplicationCommandOptionUser, Value: userID,
	}
}

func StringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value,
	}
}

// FocusedOpt is a string option the member is currently typing.
func FocusedOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	opt := StringOpt(name, value)
	opt.Focused = true
	return opt
}

// IntOpt carries its value as float64, the way it arrives decoded from JSON.
func IntOpt(name string, value int64) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(value),
	}
}

func SubCommand(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name: name, Type: discordgo.ApplicationCommandOptionSubCommand, Options: options,
	}
}

// Callback is the decoded body of an interaction response. Components are
// left out, they do not decode into discordgo's interface types.
type Callback struct {
	Type discordgo.InteractionResponseType `json:"type"`
	Data struct {
		Content  string                                      `json:"content"`
		Flags    discordgo.MessageFlags                      `json:"flags"`
		CustomID string                                      `json:"custom_id"`
		Title    string                                      `json:"title"`
		Embeds   []*discordgo.MessageEmbed                   `json:"embeds"`
		Choices  []*discordgo.ApplicationCommandOptionChoice `json:"choices"`
	} `json:"data"`
}

// Response decodes the last interaction callback posted so far.
func (s *Server) Response() (*Callback, bool) {
	reqs := s.Requests("POST", CallbackPath)
	if len(reqs) == 0 {
		return nil, false
	}
	var resp Callback
	if err := reqs[len(reqs)-1].Decode(&resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// OriginalPath is where deferred responses are edited for interactions built here.
const OriginalPath = "/webhooks/" + BotUserID + "/" + InteractionToken + "/messages/@original"

// Edited returns the content of the last edit to the deferred response.
func (s *Server) Edited() (string, bool) {
	reqs := s.Requests("PATCH", OriginalPath)
	if len(reqs) == 0 {
		return "", false
	}
	var edit struct {
		Content string `json:"content"`
	}
	if err := reqs[len(reqs)-1].Decode(&edit); err != nil {
		return "", false
	}
	return edit.Content, true
}
