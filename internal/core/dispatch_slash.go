package core

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (r *Router) handleSlash(s Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	resp := newInteractionResponder(s, i.Interaction)
	key, opts := subCommandPath(data)

	var cmd *SlashCommand
	if key != "" {
		c, ok := r.reg.SubCommand(key)
		if !ok {
			r.outdated(resp, key, "This sub command is outdated.")
			return
		}
		cmd = c
	} else {
		c, ok := r.reg.SlashCommand(data.Name)
		if !ok {
			r.outdated(resp, data.Name, "This command is outdated.")
			return
		}
		cmd = c
	}

	r.dispatch(&slashInvocation{r: r, s: s, i: i, cmd: cmd, opts: opts, resp: resp})
}

func (r *Router) outdated(resp *interactionResponder, key, msg string) {
	r.log.Warn().Str("command", key).Msg("interaction for unregistered command")
	if err := resp.reply(&Reply{Content: msg, Ephemeral: true}); err != nil {
		r.log.Debug().Err(err).Str("command", key).Msg("failed to send outdated notice")
	}
}

// subCommandPath returns the "parent.sub" or "parent.group.sub" key of the
// invoked sub-command, or "" for a plain command, plus the leaf options.
func subCommandPath(data discordgo.ApplicationCommandInteractionData) (string, []*discordgo.ApplicationCommandInteractionDataOption) {
	path := []string{data.Name}
	opts := data.Options
	for len(opts) == 1 {
		o := opts[0]
		if o.Type != discordgo.ApplicationCommandOptionSubCommandGroup && o.Type != discordgo.ApplicationCommandOptionSubCommand {
			break
		}
		path = append(path, o.Name)
		opts = o.Options
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			break
		}
	}
	if len(path) == 1 {
		return "", opts
	}
	return strings.Join(path, "."), opts
}

type slashInvocation struct {
	r    *Router
	s    Session
	i    *discordgo.InteractionCreate
	cmd  *SlashCommand
	opts []*discordgo.ApplicationCommandInteractionDataOption
	resp *interactionResponder
}

func (t *slashInvocation) action() Action    { return t.cmd }
func (t *slashInvocation) actorID() string   { return userID(interactionUser(t.i.Interaction)) }
func (t *slashInvocation) guildID() string   { return t.i.GuildID }
func (t *slashInvocation) channelID() string { return t.i.ChannelID }

func (t *slashInvocation) respond(reply *Reply) (func() error, error) {
	if err := t.resp.reply(reply); err != nil {
		return nil, err
	}
	return t.resp.remove, nil
}

func (t *slashInvocation) run() error {
	return t.cmd.Run(&SlashContext{
		Session: t.s,
		Event:   t.i,
		Options: t.opts,
		Command: t.cmd,
		Router:  t.r,
		resp:    t.resp,
	})
}

func (t *slashInvocation) blocked() bool {
	r, i, cmd := t.r, t.i, t.cmd
	errColor := r.o.Theme.Error
	actor := t.actorID()

	if cmd.GuildOnly && i.GuildID == "" {
		reply := notice("", "This command can only be used in a server.", errColor)
		reply.Ephemeral = true
		r.send(t, reply)
		return true
	}

	if i.GuildID != "" && len(cmd.BotPerms) > 0 {
		if r.botPermsGate(t, i.AppPermissions, cmd.BotPerms, i.ChannelID, fixPermissionsRow(i.AppID, i.GuildID)) {
			return true
		}
	}

	if r.cooldownGate(t, CooldownCheck{Interaction: i}) {
		return true
	}

	if cmd.Beta && !r.IsBetaTester(actor) {
		r.send(t, notice("", "This command is in beta testing.", errColor))
		return true
	}

	if cmd.Manager && !r.isManager(i.GuildID, i.Member, actor) {
		reply := notice("", "This command is restricted to server managers.", errColor)
		reply.Ephemeral = true
		r.send(t, reply)
		return true
	}

	return r.validationGate(t, ValidationContext{Session: t.s, Interaction: i, Action: cmd}, false)
}
