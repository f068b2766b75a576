package core

import (
	"github.com/bwmarrin/discordgo"
)

func (r *Router) handleButton(s Session, i *discordgo.InteractionCreate) {
	id := i.MessageComponentData().CustomID
	b, ok := r.reg.MatchButton(id)
	if !ok {
		r.log.Debug().Str("custom_id", id).Msg("no button handler matched")
		return
	}
	r.dispatch(&buttonInvocation{
		r:        r,
		s:        s,
		i:        i,
		btn:      b,
		customID: id,
		resp:     newInteractionResponder(s, i.Interaction),
	})
}

type buttonInvocation struct {
	r        *Router
	s        Session
	i        *discordgo.InteractionCreate
	btn      *Button
	customID string
	resp     *interactionResponder
}

func (t *buttonInvocation) action() Action    { return t.btn }
func (t *buttonInvocation) actorID() string   { return userID(interactionUser(t.i.Interaction)) }
func (t *buttonInvocation) guildID() string   { return t.i.GuildID }
func (t *buttonInvocation) channelID() string { return t.i.ChannelID }

func (t *buttonInvocation) respond(reply *Reply) (func() error, error) {
	if err := t.resp.reply(reply); err != nil {
		return nil, err
	}
	return t.resp.remove, nil
}

func (t *buttonInvocation) run() error {
	return t.btn.Run(&ButtonContext{
		Session:  t.s,
		Event:    t.i,
		CustomID: t.customID,
		Button:   t.btn,
		Router:   t.r,
		resp:     t.resp,
	})
}

func (t *buttonInvocation) blocked() bool {
	r, i := t.r, t.i
	vctx := ValidationContext{Session: t.s, Interaction: i, Action: t.btn}

	// no channel permissions exist in DMs
	if i.GuildID == "" {
		return r.validationGate(t, vctx, true)
	}

	if r.cooldownGate(t, CooldownCheck{Interaction: i}) {
		return true
	}
	if r.botChannelGate(t.s, t, i.AppPermissions, i.ChannelID, "button") {
		return true
	}
	return r.validationGate(t, vctx, true)
}
