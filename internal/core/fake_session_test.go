package core

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const basePerms = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks

type sentMessage struct {
	ChannelID string
	Data      *discordgo.MessageSend
}

// fakeSession records every outbound call.
type fakeSession struct {
	mu          sync.Mutex
	seq         int
	sends       []sentMessage
	deletes     []string
	responds    []*discordgo.InteractionResponse
	edits       []*discordgo.WebhookEdit
	respDeletes int
	dmOpens     []string
	perms       map[string]int64
	permErr     error
	respondErr  error
}

func newFakeSession() *fakeSession {
	return &fakeSession{perms: map[string]int64{}}
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.sends = append(f.sends, sentMessage{ChannelID: channelID, Data: data})
	return &discordgo.Message{ID: fmt.Sprintf("m%d", f.seq), ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, channelID+"/"+messageID)
	return nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responds = append(f.responds, resp)
	return nil
}

func (f *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return &discordgo.Message{ID: "edited"}, nil
}

func (f *fakeSession) InteractionResponseDelete(_ *discordgo.Interaction, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.respDeletes++
	return nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dmOpens = append(f.dmOpens, recipientID)
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (f *fakeSession) UserChannelPermissions(userID, _ string, _ ...discordgo.RequestOption) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.permErr != nil {
		return 0, f.permErr
	}
	return f.perms[userID], nil
}

func (f *fakeSession) sentTo(channelID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, s := range f.sends {
		if s.ChannelID == channelID {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeSession) allSends() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sends...)
}

func (f *fakeSession) allResponds() []*discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.InteractionResponse(nil), f.responds...)
}

func (f *fakeSession) allEdits() []*discordgo.WebhookEdit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.WebhookEdit(nil), f.edits...)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRouter(t *testing.T, o Options) *Router {
	t.Helper()
	o.Logger = zerolog.Nop()
	r := New(o)
	r.SetSelfID("bot")
	t.Cleanup(r.Close)
	return r
}

func messageEvent(guildID, channelID, authorID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "msg-" + authorID,
		GuildID:   guildID,
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
	}}
}

func interaction(guildID, userID string, typ discordgo.InteractionType, data discordgo.InteractionData) *discordgo.InteractionCreate {
	i := &discordgo.Interaction{
		ID:             "int-" + userID,
		AppID:          "app",
		Type:           typ,
		GuildID:        guildID,
		ChannelID:      "chan",
		AppPermissions: basePerms,
		Data:           data,
	}
	if guildID != "" {
		i.Member = &discordgo.Member{User: &discordgo.User{ID: userID}}
	} else {
		i.User = &discordgo.User{ID: userID}
	}
	return &discordgo.InteractionCreate{Interaction: i}
}

func slashEvent(guildID, userID, name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return interaction(guildID, userID, discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{
		Name:        name,
		CommandType: discordgo.ChatApplicationCommand,
		Options:     opts,
	})
}

func buttonEvent(guildID, userID, customID string) *discordgo.InteractionCreate {
	return interaction(guildID, userID, discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{
		CustomID:      customID,
		ComponentType: discordgo.ButtonComponent,
	})
}

func embedText(r *discordgo.InteractionResponse) string {
	if r.Data == nil {
		return ""
	}
	out := r.Data.Content
	for _, e := range r.Data.Embeds {
		out += "|" + e.Title + "|" + e.Description
	}
	return out
}

func sendText(s sentMessage) string {
	out := s.Data.Content
	for _, e := range s.Data.Embeds {
		out += "|" + e.Title + "|" + e.Description
	}
	return out
}
