package core

import (
	"github.com/bwmarrin/discordgo"
)

// TextContext is handed to a text command's Run.
type TextContext struct {
	Session Session
	Event   *discordgo.MessageCreate
	Args    []string
	Prefix  string
	Command *TextCommand
	Router  *Router
}

// Author returns the user who sent the command.
func (c *TextContext) Author() *discordgo.User { return c.Event.Author }

// Send posts r into the command's channel.
func (c *TextContext) Send(r *Reply) (*discordgo.Message, error) {
	return c.Session.ChannelMessageSendComplex(c.Event.ChannelID, r.messageSend(nil))
}

// Reply posts r as a reply to the command message.
func (c *TextContext) Reply(r *Reply) (*discordgo.Message, error) {
	return c.Session.ChannelMessageSendComplex(c.Event.ChannelID, r.messageSend(c.Event.SoftReference()))
}

// SlashContext is handed to a slash command's Run.
type SlashContext struct {
	Session Session
	Event   *discordgo.InteractionCreate
	// Options are the options of the invoked leaf command or sub-command.
	Options []*discordgo.ApplicationCommandInteractionDataOption
	Command *SlashCommand
	Router  *Router

	resp *interactionResponder
}

// User returns the invoking user.
func (c *SlashContext) User() *discordgo.User { return interactionUser(c.Event.Interaction) }

// Reply responds to the interaction, or edits the response if one was already sent.
func (c *SlashContext) Reply(r *Reply) error { return c.resp.reply(r) }

// Defer acknowledges the interaction so the handler can answer later with Reply.
func (c *SlashContext) Defer(ephemeral bool) error { return c.resp.deferReply(ephemeral) }

// Replied reports whether the interaction has been answered.
func (c *SlashContext) Replied() bool { return c.resp.hasReplied() }

// Option returns the named option or nil.
func (c *SlashContext) Option(name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range c.Options {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// ButtonContext is handed to a button's Run.
type ButtonContext struct {
	Session  Session
	Event    *discordgo.InteractionCreate
	CustomID string
	Button   *Button
	Router   *Router

	resp *interactionResponder
}

// User returns the user who pressed the button.
func (c *ButtonContext) User() *discordgo.User { return interactionUser(c.Event.Interaction) }

// Reply responds to the interaction, or edits the response if one was already sent.
func (c *ButtonContext) Reply(r *Reply) error { return c.resp.reply(r) }

// Update replaces the message the button is attached to.
func (c *ButtonContext) Update(r *Reply) error {
	c.resp.mu.Lock()
	defer c.resp.mu.Unlock()

	err := c.Session.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: r.responseData(),
	})
	if err == nil {
		c.resp.replied = true
	}
	return err
}

// Replied reports whether the interaction has been answered.
func (c *ButtonContext) Replied() bool { return c.resp.hasReplied() }
