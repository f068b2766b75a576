package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// HandleMessage routes a prefixed message to its text command.
func (r *Router) HandleMessage(s Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	self := r.self()

	if isBareMention(m.Content, self) {
		if r.o.MentionMessage != "" {
			if _, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{Content: r.o.MentionMessage}); err != nil {
				r.log.Debug().Err(err).Str("channel", m.ChannelID).Msg("failed to answer mention")
			}
		}
		return
	}

	prefixes, err := r.o.Prefixes.Prefixes(m)
	if err != nil {
		r.log.Warn().Err(err).Str("guild", m.GuildID).Msg("prefix lookup failed")
		return
	}
	parsed, ok := parseCommand(m.Content, append(prefixes, mentionPrefixes(self)...))
	if !ok {
		return
	}
	cmd, ok := r.reg.TextCommand(parsed.name)
	if !ok {
		return
	}

	r.dispatch(&textInvocation{r: r, s: s, m: m, cmd: cmd, parsed: parsed})
}

type textInvocation struct {
	r      *Router
	s      Session
	m      *discordgo.MessageCreate
	cmd    *TextCommand
	parsed parsedCommand
}

func (t *textInvocation) action() Action    { return t.cmd }
func (t *textInvocation) actorID() string   { return t.m.Author.ID }
func (t *textInvocation) guildID() string   { return t.m.GuildID }
func (t *textInvocation) channelID() string { return t.m.ChannelID }

func (t *textInvocation) respond(reply *Reply) (func() error, error) {
	msg, err := t.s.ChannelMessageSendComplex(t.m.ChannelID, reply.messageSend(t.m.SoftReference()))
	if err != nil {
		return nil, err
	}
	return func() error { return t.s.ChannelMessageDelete(t.m.ChannelID, msg.ID) }, nil
}

func (t *textInvocation) run() error {
	return t.cmd.Run(&TextContext{
		Session: t.s,
		Event:   t.m,
		Args:    t.parsed.args,
		Prefix:  t.parsed.prefix,
		Command: t.cmd,
		Router:  t.r,
	})
}

func (t *textInvocation) blocked() bool {
	r, m, cmd := t.r, t.m, t.cmd
	inGuild := m.GuildID != ""
	errColor := r.o.Theme.Error

	if cmd.GuildOnly && !inGuild {
		r.send(t, notice("", "This command can only be used in a server.", errColor))
		return true
	}

	var botPerms int64
	knowBotPerms := false
	if inGuild {
		if self := r.self(); self != "" {
			perms, err := t.s.UserChannelPermissions(self, m.ChannelID)
			if err != nil {
				r.log.Warn().Err(err).Str("channel", m.ChannelID).Msg("bot permission lookup failed")
				return true
			}
			if r.botChannelGate(t.s, t, perms, m.ChannelID, "command") {
				return true
			}
			botPerms, knowBotPerms = perms, true
		}
	}

	if r.cooldownGate(t, CooldownCheck{Message: m}) {
		return true
	}

	if cmd.Args && len(t.parsed.args) == 0 {
		msg := fmt.Sprintf("You didn't provide any arguments, <@%s>!", m.Author.ID)
		if cmd.Usage != "" {
			msg += fmt.Sprintf("\nUsage: `%s%s %s`", t.parsed.prefix, cmd.Name, cmd.Usage)
		}
		r.send(t, notice("", msg, errColor))
		return true
	}

	if inGuild {
		if knowBotPerms && r.botPermsGate(t, botPerms, cmd.BotPerms, m.ChannelID, nil) {
			return true
		}
		if len(cmd.UserPerms) > 0 {
			have, err := t.s.UserChannelPermissions(m.Author.ID, m.ChannelID)
			if err != nil {
				r.log.Warn().Err(err).Str("user", m.Author.ID).Msg("user permission lookup failed")
				return true
			}
			if r.userPermsGate(t, have, cmd.UserPerms, m.ChannelID) {
				return true
			}
		}
	}

	if cmd.Owner && !r.IsOwner(m.Author.ID) {
		owner := "the bot owner"
		if len(r.o.Owners) > 0 {
			owner = "<@" + r.o.Owners[0] + ">"
		}
		r.send(t, notice("", fmt.Sprintf("Only %s can use this command.", owner), errColor))
		return true
	}

	if cmd.Manager && !r.isManager(m.GuildID, m.Member, m.Author.ID) {
		r.send(t, notice("", "This command is restricted to server managers.", errColor))
		return true
	}

	return r.validationGate(t, ValidationContext{Session: t.s, Message: m, Action: cmd}, false)
}
