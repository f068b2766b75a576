package core

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
)

// Reply is a platform payload sent back to the actor.
type Reply struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	// Ephemeral only applies to interaction responses.
	Ephemeral bool
}

// Text builds a plain text reply.
func Text(content string) *Reply {
	return &Reply{Content: content}
}

// EmbedReply builds a reply carrying a single embed.
func EmbedReply(e *discordgo.MessageEmbed) *Reply {
	return &Reply{Embeds: []*discordgo.MessageEmbed{e}}
}

// notice builds a single-embed reply.
func notice(title, description string, color int) *Reply {
	e := embed.NewEmbed().SetDescription(description).SetColor(color)
	if title != "" {
		e.SetTitle(title)
	}
	return EmbedReply(e.MessageEmbed)
}

func (r *Reply) clone() *Reply {
	c := *r
	c.Embeds = make([]*discordgo.MessageEmbed, 0, len(r.Embeds))
	for _, e := range r.Embeds {
		if e == nil {
			continue
		}
		ec := *e
		c.Embeds = append(c.Embeds, &ec)
	}
	c.Components = append([]discordgo.MessageComponent(nil), r.Components...)
	return &c
}

func (r *Reply) messageSend(ref *discordgo.MessageReference) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    r.Content,
		Embeds:     r.Embeds,
		Components: r.Components,
		Reference:  ref,
	}
}

func (r *Reply) responseData() *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content:    r.Content,
		Embeds:     r.Embeds,
		Components: r.Components,
	}
	if r.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

func (r *Reply) webhookEdit() *discordgo.WebhookEdit {
	content := r.Content
	embeds := r.Embeds
	components := r.Components
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}
}

// interactionResponder answers one interaction. The first reply is an
// interaction response; later replies edit it.
type interactionResponder struct {
	s Session
	i *discordgo.Interaction

	mu      sync.Mutex
	replied bool
}

func newInteractionResponder(s Session, i *discordgo.Interaction) *interactionResponder {
	return &interactionResponder{s: s, i: i}
}

func (r *interactionResponder) reply(p *Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.replied {
		_, err := r.s.InteractionResponseEdit(r.i, p.webhookEdit())
		return err
	}
	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: p.responseData(),
	})
	if err == nil {
		r.replied = true
	}
	return err
}

func (r *interactionResponder) deferReply(ephemeral bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.replied {
		return nil
	}
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	err := r.s.InteractionRespond(r.i, resp)
	if err == nil {
		r.replied = true
	}
	return err
}

func (r *interactionResponder) hasReplied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replied
}

func (r *interactionResponder) remove() error {
	return r.s.InteractionResponseDelete(r.i)
}
