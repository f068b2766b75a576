package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// PermissionNames maps permission bits to the names shown in notices.
var PermissionNames = map[int64]string{
	discordgo.PermissionCreateInstantInvite:    "Create Instant Invite",
	discordgo.PermissionKickMembers:            "Kick Members",
	discordgo.PermissionBanMembers:             "Ban Members",
	discordgo.PermissionAdministrator:          "Administrator",
	discordgo.PermissionManageChannels:         "Manage Channels",
	discordgo.PermissionManageGuild:            "Manage Server",
	discordgo.PermissionAddReactions:           "Add Reactions",
	discordgo.PermissionViewAuditLogs:          "View Audit Logs",
	discordgo.PermissionViewChannel:            "View Channel",
	discordgo.PermissionSendMessages:           "Send Messages",
	discordgo.PermissionManageMessages:         "Manage Messages",
	discordgo.PermissionEmbedLinks:             "Embed Links",
	discordgo.PermissionAttachFiles:            "Attach Files",
	discordgo.PermissionReadMessageHistory:     "Read Message History",
	discordgo.PermissionMentionEveryone:        "Mention Everyone",
	discordgo.PermissionUseExternalEmojis:      "Use External Emojis",
	discordgo.PermissionUseApplicationCommands: "Use Application Commands",
	discordgo.PermissionManageThreads:          "Manage Threads",
	discordgo.PermissionSendMessagesInThreads:  "Send Messages in Threads",
	discordgo.PermissionVoiceConnect:           "Connect to Voice Channel",
	discordgo.PermissionVoiceSpeak:             "Speak",
	discordgo.PermissionVoiceMoveMembers:       "Move Members",
	discordgo.PermissionManageNicknames:        "Manage Nicknames",
	discordgo.PermissionManageRoles:            "Manage Roles",
	discordgo.PermissionManageWebhooks:         "Manage Webhooks",
	discordgo.PermissionModerateMembers:        "Moderate Members",
}

// FixPermissionsURL is the re-invite link attached to missing permission notices
// of slash commands.
const FixPermissionsURL = "https://discord.com/oauth2/authorize?client_id=%s&scope=bot%%20applications.commands&permissions=382185367609&guild_id=%s&disable_guild_select=true"

// PermissionName returns the display name of a permission bit.
func PermissionName(p int64) string {
	if name, ok := PermissionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", p)
}

// missingPerms returns the required bits absent from have. Administrator
// implies every permission.
func missingPerms(have int64, required []int64) []int64 {
	if have&discordgo.PermissionAdministrator != 0 {
		return nil
	}
	var missing []int64
	for _, p := range required {
		if have&p != p {
			missing = append(missing, p)
		}
	}
	return missing
}

func permList(perms []int64) string {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = PermissionName(p)
	}
	return strings.Join(names, ", ")
}

// botChannelGate checks that the bot can talk in the channel at all.
// Missing Send Messages falls back to a DM, missing View Channel is silent.
func (r *Router) botChannelGate(s Session, inv invocation, have int64, channelID, what string) bool {
	a := inv.action()

	if missingPerms(have, []int64{discordgo.PermissionSendMessages}) != nil {
		r.directNotice(s, inv.actorID(), fmt.Sprintf(
			"I don't have **`%s`** permission in <#%s> to execute this **`%s`** %s.",
			PermissionName(discordgo.PermissionSendMessages), channelID, a.Key(), what,
		))
		return true
	}
	if missingPerms(have, []int64{discordgo.PermissionViewChannel}) != nil {
		return true
	}
	if missingPerms(have, []int64{discordgo.PermissionEmbedLinks}) != nil {
		r.send(inv, Text(fmt.Sprintf(
			"I don't have **`%s`** permission in <#%s> to execute this **`%s`** %s.",
			PermissionName(discordgo.PermissionEmbedLinks), channelID, a.Key(), what,
		)))
		return true
	}
	return false
}

// directNotice DMs the actor. Failures are logged only.
func (r *Router) directNotice(s Session, actorID, content string) {
	ch, err := s.UserChannelCreate(actorID)
	if err != nil {
		r.log.Debug().Err(err).Str("user", actorID).Msg("failed to open DM channel")
		return
	}
	if _, err := s.ChannelMessageSendComplex(ch.ID, &discordgo.MessageSend{Content: content}); err != nil {
		r.log.Debug().Err(err).Str("user", actorID).Msg("failed to send DM")
	}
}

// botPermsGate checks the action's own bot permission requirements.
func (r *Router) botPermsGate(inv invocation, have int64, required []int64, channelID string, fix []discordgo.MessageComponent) bool {
	missing := missingPerms(have, required)
	if len(missing) == 0 {
		return false
	}
	title := ""
	if fix != nil {
		title = "Missing Permissions"
	}
	reply := notice(title, fmt.Sprintf(
		"I don't have **`%s`** permission in <#%s> to execute this **`%s`** command.",
		permList(missing), channelID, inv.action().Key(),
	), r.o.Theme.Error)
	reply.Components = fix
	r.send(inv, reply)
	return true
}

// userPermsGate checks the actor's permissions in the channel.
func (r *Router) userPermsGate(inv invocation, have int64, required []int64, channelID string) bool {
	missing := missingPerms(have, required)
	if len(missing) == 0 {
		return false
	}
	r.send(inv, notice("", fmt.Sprintf(
		"You don't have **`%s`** permission in <#%s> to execute this **`%s`** command.",
		permList(missing), channelID, inv.action().Key(),
	), r.o.Theme.Error))
	return true
}

// fixPermissionsRow is the link button row attached to slash permission notices.
func fixPermissionsRow(appID, guildID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label: "Fix Permissions",
				Style: discordgo.LinkButton,
				URL:   fmt.Sprintf(FixPermissionsURL, appID, guildID),
			},
		}},
	}
}

// isManager reports whether the actor may run manager-only actions in guildID.
func (r *Router) isManager(guildID string, member *discordgo.Member, actorID string) bool {
	if r.IsOwner(actorID) {
		return true
	}
	if member == nil {
		return false
	}
	for _, m := range r.o.Managers {
		if m.GuildID == guildID && slices.Contains(member.Roles, m.RoleID) {
			return true
		}
	}
	return false
}
