package core

import (
	"github.com/bwmarrin/discordgo"
)

// ValidationContext is what a custom validation sees. Message is set for
// text commands, Interaction for slash commands and buttons.
type ValidationContext struct {
	Session     Session
	Message     *discordgo.MessageCreate
	Interaction *discordgo.InteractionCreate
	Action      Action
}

// Actor returns the invoking user.
func (c ValidationContext) Actor() *discordgo.User {
	if c.Message != nil {
		return c.Message.Author
	}
	if c.Interaction != nil {
		return interactionUser(c.Interaction.Interaction)
	}
	return nil
}

// Member returns the invoking guild member, or nil in DMs.
func (c ValidationContext) Member() *discordgo.Member {
	if c.Message != nil {
		return c.Message.Member
	}
	if c.Interaction != nil {
		return c.Interaction.Member
	}
	return nil
}

// GuildID is empty in DMs.
func (c ValidationContext) GuildID() string {
	if c.Message != nil {
		return c.Message.GuildID
	}
	if c.Interaction != nil {
		return c.Interaction.GuildID
	}
	return ""
}

func (c ValidationContext) ChannelID() string {
	if c.Message != nil {
		return c.Message.ChannelID
	}
	if c.Interaction != nil {
		return c.Interaction.ChannelID
	}
	return ""
}

// CustomValidation is a named predicate actions opt into through
// Gates.Validations. OnFailFunc wins over OnFail when both are set.
type CustomValidation struct {
	Name     string
	Validate func(ctx ValidationContext) (bool, error)
	// OnFail is sent when Validate reports false. A content-only reply is
	// turned into an error-colored embed.
	OnFail     *Reply
	OnFailFunc func(ctx ValidationContext) *Reply
}

func (v *CustomValidation) failure(ctx ValidationContext) *Reply {
	if v.OnFailFunc != nil {
		if r := v.OnFailFunc(ctx); r != nil {
			return r
		}
	}
	if v.OnFail != nil {
		return v.OnFail
	}
	return Text("You can't use this right now.")
}

// validationGate runs the action's validations in order and stops at the
// first failure.
func (r *Router) validationGate(inv invocation, ctx ValidationContext, ephemeral bool) bool {
	a := inv.action()
	names := a.gating().Validations
	if len(names) == 0 {
		return false
	}

	for _, name := range names {
		v, ok := r.validation(name)
		if !ok {
			r.log.Warn().Err(ErrUnknownValidation).Str("validation", name).Str("action", a.Key()).Msg("skipping validation")
			continue
		}
		if v.Validate == nil {
			continue
		}

		pass, err := v.Validate(ctx)
		if err != nil {
			r.log.Warn().Err(err).Str("validation", name).Str("action", a.Key()).Msg("validation failed with error")
			pass = false
		}
		if pass {
			continue
		}

		reply := r.themed(v.failure(ctx))
		reply.Ephemeral = ephemeral
		r.send(inv, reply)
		return true
	}
	return false
}

// themed returns a copy of reply whose embeds carry a color, turning bare
// content into an embed.
func (r *Router) themed(reply *Reply) *Reply {
	out := reply.clone()
	if len(out.Embeds) == 0 && out.Content != "" {
		return &Reply{
			Embeds:     notice("", out.Content, r.o.Theme.Error).Embeds,
			Components: out.Components,
		}
	}
	for _, e := range out.Embeds {
		if e.Color == 0 {
			e.Color = r.o.Theme.Error
		}
	}
	return out
}
