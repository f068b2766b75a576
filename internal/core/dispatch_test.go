package core

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingText(name string, runs *atomic.Int32) *TextCommand {
	return &TextCommand{
		Name: name,
		Run: func(*TextContext) error {
			runs.Add(1)
			return nil
		},
	}
}

func TestTextCapabilityFailureSkipsValidation(t *testing.T) {
	var validated atomic.Bool
	var runs atomic.Int32

	r := newTestRouter(t, Options{
		Validations: []CustomValidation{{
			Name: "never",
			Validate: func(ValidationContext) (bool, error) {
				validated.Store(true)
				return false, nil
			},
			OnFail: Text("validation failed"),
		}},
	})
	cmd := countingText("ban", &runs)
	cmd.BotPerms = []int64{discordgo.PermissionBanMembers}
	cmd.Validations = []string{"never"}
	require.NoError(t, r.Registry().AddText(cmd))

	s := newFakeSession()
	s.perms["bot"] = basePerms
	r.HandleMessage(s, messageEvent("g1", "c1", "u1", "!ban someone"))
	r.Wait()

	sends := s.allSends()
	require.Len(t, sends, 1)
	assert.Contains(t, sendText(sends[0]), "Ban Members")
	assert.NotContains(t, sendText(sends[0]), "validation failed")
	assert.False(t, validated.Load())
	assert.Zero(t, runs.Load())
}

func TestMissingSendMessagesDMsActor(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{})
	require.NoError(t, r.Registry().AddText(countingText("ping", &runs)))

	s := newFakeSession()
	s.perms["bot"] = discordgo.PermissionViewChannel | discordgo.PermissionEmbedLinks
	r.HandleMessage(s, messageEvent("g1", "c1", "u1", "!ping"))
	r.Wait()

	assert.Equal(t, []string{"u1"}, s.dmOpens)
	assert.Len(t, s.sentTo("dm-u1"), 1)
	assert.Empty(t, s.sentTo("c1"))
	assert.Zero(t, runs.Load())
}

func TestMissingViewChannelIsSilent(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{})
	require.NoError(t, r.Registry().AddText(countingText("ping", &runs)))

	s := newFakeSession()
	s.perms["bot"] = discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks
	r.HandleMessage(s, messageEvent("g1", "c1", "u1", "!ping"))
	r.Wait()

	assert.Empty(t, s.allSends())
	assert.Empty(t, s.dmOpens)
	assert.Zero(t, runs.Load())
}

func TestMissingEmbedLinksSendsPlainText(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{})
	require.NoError(t, r.Registry().AddText(countingText("ping", &runs)))

	s := newFakeSession()
	s.perms["bot"] = discordgo.PermissionSendMessages | discordgo.PermissionViewChannel
	r.HandleMessage(s, messageEvent("g1", "c1", "u1", "!ping"))
	r.Wait()

	sends := s.sentTo("c1")
	require.Len(t, sends, 1)
	assert.Empty(t, sends[0].Data.Embeds)
	assert.Contains(t, sends[0].Data.Content, "Embed Links")
	assert.Zero(t, runs.Load())
}

func TestPermissionLookupErrorBlocksSilently(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{})
	require.NoError(t, r.Registry().AddText(countingText("ping", &runs)))

	s := newFakeSession()
	s.permErr = errors.New("unknown channel")
	r.HandleMessage(s, messageEvent("g1", "c1", "u1", "!ping"))
	r.Wait()

	assert.Empty(t, s.allSends())
	assert.Zero(t, runs.Load())
}

func TestSpecifiedCooldownOptIn(t *testing.T) {
	clock := newFakeClock()
	var freeRuns, slowRuns atomic.Int32

	r := newTestRouter(t, Options{
		Clock:    clock.Now,
		Cooldown: CooldownConfig{Enabled: true, Duration: 3 * time.Second, Type: CooldownSpecified},
	})
	slow := countingText("slow", &slowRuns)
	slow.Cooldown = CooldownCustom(CooldownConfig{Enabled: true, Duration: 5000 * time.Millisecond})
	require.NoError(t, r.Registry().AddText(countingText("free", &freeRuns), slow))

	s := newFakeSession()
	for range 5 {
		r.HandleMessage(s, messageEvent("", "dm", "u1", "!free"))
	}
	r.Wait()
	assert.EqualValues(t, 5, freeRuns.Load())
	assert.Empty(t, s.allSends())

	r.HandleMessage(s, messageEvent("", "dm", "u1", "!slow"))
	r.Wait()
	assert.EqualValues(t, 1, slowRuns.Load())

	clock.Advance(1 * time.Second)
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!slow"))
	r.Wait()
	assert.EqualValues(t, 1, slowRuns.Load())
	sends := s.allSends()
	require.Len(t, sends, 1)
	assert.Contains(t, sendText(sends[0]), "Cooldown")
	assert.Contains(t, sendText(sends[0]), "`slow`")
	assert.Contains(t, sendText(sends[0]), "4000ms")

	clock.Advance(5 * time.Second)
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!slow"))
	r.Wait()
	assert.EqualValues(t, 2, slowRuns.Load())
}

func TestGlobalCooldownToggleOff(t *testing.T) {
	clock := newFakeClock()
	var runs atomic.Int32
	r := newTestRouter(t, Options{
		Clock:    clock.Now,
		Cooldown: CooldownConfig{Enabled: true, Duration: time.Minute, Type: CooldownGlobal},
	})
	cmd := countingText("spam", &runs)
	cmd.Cooldown = CooldownToggle(false)
	require.NoError(t, r.Registry().AddText(cmd))

	s := newFakeSession()
	for range 3 {
		r.HandleMessage(s, messageEvent("", "dm", "u1", "!spam"))
	}
	r.Wait()
	assert.EqualValues(t, 3, runs.Load())
}

func TestCooldownCheckVeto(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{
		Owners: []string{"owner"},
		Cooldown: CooldownConfig{
			Enabled:  true,
			Duration: time.Minute,
			Type:     CooldownGlobal,
			Check: func(c CooldownCheck) bool {
				return c.Message == nil || c.Message.Author.ID != "owner"
			},
		},
	})
	require.NoError(t, r.Registry().AddText(countingText("ping", &runs)))

	s := newFakeSession()
	for range 3 {
		r.HandleMessage(s, messageEvent("", "dm", "owner", "!ping"))
	}
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!ping"))
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!ping"))
	r.Wait()

	assert.EqualValues(t, 4, runs.Load())
	assert.Len(t, s.allSends(), 1)
	assert.Equal(t, 1, r.Stats().ActiveCooldowns)
}

func TestTextArgsUsage(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{})
	cmd := countingText("say", &runs)
	cmd.Args = true
	cmd.Usage = "<text>"
	require.NoError(t, r.Registry().AddText(cmd))

	s := newFakeSession()
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!say"))
	r.Wait()

	sends := s.allSends()
	require.Len(t, sends, 1)
	assert.Contains(t, sendText(sends[0]), "You didn't provide any arguments, <@u1>!")
	assert.Contains(t, sendText(sends[0]), "Usage: `!say <text>`")
	assert.Zero(t, runs.Load())
}

func TestTextOwnerOnly(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{Owners: []string{"boss"}})
	cmd := countingText("shutdown", &runs)
	cmd.Owner = true
	require.NoError(t, r.Registry().AddText(cmd))

	s := newFakeSession()
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!shutdown"))
	r.HandleMessage(s, messageEvent("", "dm", "boss", "!shutdown"))
	r.Wait()

	sends := s.allSends()
	require.Len(t, sends, 1)
	assert.Contains(t, sendText(sends[0]), "Only <@boss> can use this command.")
	assert.EqualValues(t, 1, runs.Load())
}

func TestTextUserPerms(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{})
	cmd := countingText("purge", &runs)
	cmd.UserPerms = []int64{discordgo.PermissionManageMessages}
	require.NoError(t, r.Registry().AddText(cmd))

	s := newFakeSession()
	s.perms["bot"] = basePerms
	s.perms["admin"] = discordgo.PermissionAdministrator
	r.HandleMessage(s, messageEvent("g1", "c1", "u1", "!purge"))
	r.HandleMessage(s, messageEvent("g1", "c1", "admin", "!purge"))
	r.Wait()

	sends := s.allSends()
	require.Len(t, sends, 1)
	assert.Contains(t, sendText(sends[0]), "You don't have **`Manage Messages`**")
	assert.EqualValues(t, 1, runs.Load())
}

func TestTextManagerOnly(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{Managers: []ManagerRole{{GuildID: "g1", RoleID: "mods"}}})
	cmd := countingText("config", &runs)
	cmd.Manager = true
	require.NoError(t, r.Registry().AddText(cmd))

	s := newFakeSession()
	s.perms["bot"] = basePerms

	plain := messageEvent("g1", "c1", "u1", "!config")
	plain.Member = &discordgo.Member{Roles: []string{"users"}}
	mod := messageEvent("g1", "c1", "u2", "!config")
	mod.Member = &discordgo.Member{Roles: []string{"mods"}}

	r.HandleMessage(s, plain)
	r.HandleMessage(s, mod)
	r.Wait()

	require.Len(t, s.allSends(), 1)
	assert.Contains(t, sendText(s.allSends()[0]), "server managers")
	assert.EqualValues(t, 1, runs.Load())
}

func TestTextGuildOnlyInDM(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{})
	cmd := countingText("kick", &runs)
	cmd.GuildOnly = true
	require.NoError(t, r.Registry().AddText(cmd))

	s := newFakeSession()
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!kick"))
	r.Wait()

	require.Len(t, s.allSends(), 1)
	assert.Contains(t, sendText(s.allSends()[0]), "only be used in a server")
	assert.Zero(t, runs.Load())
}

func TestTextRoutingAndMention(t *testing.T) {
	var got []string
	done := make(chan struct{}, 4)
	r := newTestRouter(t, Options{
		Prefixes:       StaticPrefixes{Main: "!", Additional: []string{"?"}},
		MentionMessage: "My prefix is `!`",
	})
	require.NoError(t, r.Registry().AddText(&TextCommand{
		Name:    "echo",
		Aliases: []string{"e"},
		Run: func(ctx *TextContext) error {
			got = append(got, ctx.Prefix+"|"+ctx.Args[0])
			done <- struct{}{}
			return nil
		},
	}))

	s := newFakeSession()
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!ECHO one"))
	<-done
	r.HandleMessage(s, messageEvent("", "dm", "u1", "?e two"))
	<-done
	r.HandleMessage(s, messageEvent("", "dm", "u1", "<@!bot> echo three"))
	<-done
	r.Wait()
	assert.Equal(t, []string{"!|one", "?|two", "<@!bot>|three"}, got)

	r.HandleMessage(s, messageEvent("", "dm", "u1", "<@bot>"))
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!unknown"))
	bot := messageEvent("", "dm", "u2", "!echo nope")
	bot.Author.Bot = true
	r.HandleMessage(s, bot)
	r.Wait()

	sends := s.allSends()
	require.Len(t, sends, 1)
	assert.Equal(t, "My prefix is `!`", sends[0].Data.Content)
}

func TestValidationGate(t *testing.T) {
	var runs atomic.Int32
	var second atomic.Bool
	r := newTestRouter(t, Options{
		Theme: Theme{Error: 0x123456},
		Validations: []CustomValidation{
			{
				Name:     "broken",
				Validate: func(ValidationContext) (bool, error) { return true, errors.New("backend down") },
				OnFail:   Text("try later"),
			},
			{
				Name: "second",
				Validate: func(ValidationContext) (bool, error) {
					second.Store(true)
					return true, nil
				},
			},
		},
	})
	cmd := countingText("guarded", &runs)
	cmd.Validations = []string{"missing", "broken", "second"}
	require.NoError(t, r.Registry().AddText(cmd))

	s := newFakeSession()
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!guarded"))
	r.Wait()

	sends := s.allSends()
	require.Len(t, sends, 1)
	require.Len(t, sends[0].Data.Embeds, 1)
	assert.Equal(t, "try later", sends[0].Data.Embeds[0].Description)
	assert.Equal(t, 0x123456, sends[0].Data.Embeds[0].Color)
	assert.False(t, second.Load())
	assert.Zero(t, runs.Load())

	// validations are looked up at dispatch time
	r.RemoveValidation("broken")
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!guarded"))
	r.Wait()
	assert.True(t, second.Load())
	assert.EqualValues(t, 1, runs.Load())
}

func TestHandlerFailures(t *testing.T) {
	r := newTestRouter(t, Options{})
	require.NoError(t, r.Registry().AddText(
		&TextCommand{Name: "fail", Run: func(*TextContext) error { return errors.New("db: connection refused") }},
		&TextCommand{Name: "panic", Run: func(*TextContext) error { panic("boom") }},
		&TextCommand{Name: "deny", Run: func(*TextContext) error {
			return &ValidationError{Message: "not today", TTL: time.Hour}
		}},
	))

	s := newFakeSession()
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!fail"))
	r.HandleMessage(s, messageEvent("", "dm", "u2", "!panic"))
	r.Wait()

	sends := s.allSends()
	require.Len(t, sends, 2)
	for _, m := range sends {
		assert.Equal(t, genericFailure, m.Data.Content)
		assert.NotContains(t, m.Data.Content, "connection refused")
	}

	r.HandleMessage(s, messageEvent("", "dm", "u3", "!deny"))
	r.Wait()
	sends = s.allSends()
	require.Len(t, sends, 3)
	require.Len(t, sends[2].Data.Embeds, 1)
	assert.Equal(t, "Validation Error", sends[2].Data.Embeds[0].Title)
	assert.Equal(t, "not today", sends[2].Data.Embeds[0].Description)
	assert.Equal(t, 1, r.Stats().PendingTimers)
}

func TestSlashBetaGate(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{BetaTesters: []string{"tester"}, Owners: []string{"owner"}})
	require.NoError(t, r.Registry().AddSlash(&SlashCommand{
		Definition: &discordgo.ApplicationCommand{Name: "preview", Description: "beta"},
		Beta:       true,
		Run: func(ctx *SlashContext) error {
			runs.Add(1)
			return ctx.Reply(Text("ok"))
		},
	}))

	s := newFakeSession()
	r.HandleInteraction(s, slashEvent("g1", "stranger", "preview"))
	r.Wait()

	responds := s.allResponds()
	require.Len(t, responds, 1)
	assert.Contains(t, embedText(responds[0]), "This command is in beta testing.")
	assert.Zero(t, runs.Load())

	r.HandleInteraction(s, slashEvent("g1", "tester", "preview"))
	r.HandleInteraction(s, slashEvent("g1", "owner", "preview"))
	r.Wait()
	assert.EqualValues(t, 2, runs.Load())
}

func TestSlashUnregisteredSubCommand(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{})
	require.NoError(t, r.Registry().AddSlash(
		&SlashCommand{
			Definition: &discordgo.ApplicationCommand{Name: "admin", Description: "admin"},
			Run:        func(*SlashContext) error { runs.Add(1); return nil },
		},
		&SlashCommand{
			SubCommand: "admin.reload",
			Run:        func(*SlashContext) error { runs.Add(1); return nil },
		},
	))

	s := newFakeSession()
	r.HandleInteraction(s, slashEvent("g1", "u1", "admin", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "purge",
		Type: discordgo.ApplicationCommandOptionSubCommand,
	}))
	r.Wait()

	responds := s.allResponds()
	require.Len(t, responds, 1)
	assert.Equal(t, "This sub command is outdated.", responds[0].Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, responds[0].Data.Flags)
	assert.Zero(t, runs.Load())

	r.HandleInteraction(s, slashEvent("g1", "u1", "gone"))
	r.Wait()
	responds = s.allResponds()
	require.Len(t, responds, 2)
	assert.Equal(t, "This command is outdated.", responds[1].Data.Content)
	assert.Zero(t, runs.Load())
}

func TestSlashSubCommandGroupRouting(t *testing.T) {
	var gotOpt string
	r := newTestRouter(t, Options{})
	require.NoError(t, r.Registry().AddSlash(&SlashCommand{
		SubCommand: "config.role.set",
		Run: func(ctx *SlashContext) error {
			gotOpt = ctx.Option("role").StringValue()
			return nil
		},
	}))

	s := newFakeSession()
	r.HandleInteraction(s, slashEvent("g1", "u1", "config", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "role",
		Type: discordgo.ApplicationCommandOptionSubCommandGroup,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{{
			Name: "set",
			Type: discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name:  "role",
				Type:  discordgo.ApplicationCommandOptionString,
				Value: "mods",
			}},
		}},
	}))
	r.Wait()
	assert.Equal(t, "mods", gotOpt)
}

func TestSlashMissingBotPermsOffersFix(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{})
	require.NoError(t, r.Registry().AddSlash(&SlashCommand{
		Definition: &discordgo.ApplicationCommand{Name: "mute", Description: "mute"},
		BotPerms:   []int64{discordgo.PermissionModerateMembers},
		Run:        func(*SlashContext) error { runs.Add(1); return nil },
	}))

	s := newFakeSession()
	r.HandleInteraction(s, slashEvent("g1", "u1", "mute"))
	r.Wait()

	responds := s.allResponds()
	require.Len(t, responds, 1)
	require.Len(t, responds[0].Data.Embeds, 1)
	assert.Equal(t, "Missing Permissions", responds[0].Data.Embeds[0].Title)
	require.Len(t, responds[0].Data.Components, 1)
	row := responds[0].Data.Components[0].(discordgo.ActionsRow)
	btn := row.Components[0].(discordgo.Button)
	assert.Equal(t, discordgo.LinkButton, btn.Style)
	assert.Contains(t, btn.URL, "client_id=app")
	assert.Contains(t, btn.URL, "guild_id=g1")
	assert.Zero(t, runs.Load())
}

func TestSlashFailureAfterReplyEdits(t *testing.T) {
	r := newTestRouter(t, Options{})
	require.NoError(t, r.Registry().AddSlash(&SlashCommand{
		Definition: &discordgo.ApplicationCommand{Name: "slow", Description: "slow"},
		Run: func(ctx *SlashContext) error {
			if err := ctx.Defer(false); err != nil {
				return err
			}
			return errors.New("upstream timeout")
		},
	}))

	s := newFakeSession()
	r.HandleInteraction(s, slashEvent("g1", "u1", "slow"))
	r.Wait()

	responds := s.allResponds()
	require.Len(t, responds, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, responds[0].Type)
	edits := s.allEdits()
	require.Len(t, edits, 1)
	assert.Equal(t, genericFailure, *edits[0].Content)
}

func TestButtonFirstMatchWins(t *testing.T) {
	var hits []string
	r := newTestRouter(t, Options{})
	require.NoError(t, r.Registry().AddButton(
		&Button{Nickname: "roll", Match: PrefixMatch("roll"), Run: func(ctx *ButtonContext) error {
			hits = append(hits, "roll:"+ctx.CustomID)
			return nil
		}},
		&Button{Nickname: "catch-all", Match: func(string) bool { return true }, Run: func(ctx *ButtonContext) error {
			hits = append(hits, "any:"+ctx.CustomID)
			return nil
		}},
	))

	s := newFakeSession()
	r.HandleInteraction(s, buttonEvent("g1", "u1", "roll:6"))
	r.Wait()
	r.HandleInteraction(s, buttonEvent("g1", "u1", "other"))
	r.Wait()
	assert.Equal(t, []string{"roll:roll:6", "any:other"}, hits)
}

func TestButtonGates(t *testing.T) {
	var runs atomic.Int32
	var validated atomic.Int32
	r := newTestRouter(t, Options{
		Validations: []CustomValidation{{
			Name: "count",
			Validate: func(ValidationContext) (bool, error) {
				validated.Add(1)
				return true, nil
			},
		}},
	})
	require.NoError(t, r.Registry().AddButton(&Button{
		Nickname: "vote",
		Match:    ExactMatch("vote"),
		Gates:    Gates{Validations: []string{"count"}},
		Run:      func(*ButtonContext) error { runs.Add(1); return nil },
	}))

	s := newFakeSession()

	// DMs only run validations
	r.HandleInteraction(s, buttonEvent("", "u1", "vote"))
	r.Wait()
	assert.EqualValues(t, 1, runs.Load())
	assert.EqualValues(t, 1, validated.Load())

	ev := buttonEvent("g1", "u1", "vote")
	ev.AppPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages
	r.HandleInteraction(s, ev)
	r.Wait()

	responds := s.allResponds()
	require.Len(t, responds, 1)
	assert.Contains(t, responds[0].Data.Content, "Embed Links")
	assert.Contains(t, responds[0].Data.Content, "**`vote`** button")
	assert.EqualValues(t, 1, runs.Load())
	assert.EqualValues(t, 1, validated.Load())
}

type memRecorder struct {
	recs chan Record
}

func (m *memRecorder) RecordInvocation(rec Record) error {
	m.recs <- rec
	return nil
}

func TestRecorderSeesLaunchedHandlers(t *testing.T) {
	rec := &memRecorder{recs: make(chan Record, 4)}
	clock := newFakeClock()
	r := newTestRouter(t, Options{Recorder: rec, Clock: clock.Now, Owners: []string{"boss"}})
	require.NoError(t, r.Registry().AddText(
		&TextCommand{Name: "ping", Run: func(*TextContext) error { return nil }},
		&TextCommand{Name: "secret", Owner: true, Run: func(*TextContext) error { return nil }},
	))

	s := newFakeSession()
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!secret"))
	r.HandleMessage(s, messageEvent("", "dm", "u1", "!ping"))
	r.Wait()

	require.Len(t, rec.recs, 1)
	got := <-rec.recs
	assert.Equal(t, KindText, got.Kind)
	assert.Equal(t, "ping", got.Action)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, clock.Now(), got.At)
}

func TestGatePanicBlocksInvocation(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		check []string
	}{
		{
			name: "validation",
			opts: Options{Validations: []CustomValidation{{
				Name:     "boom",
				Validate: func(ValidationContext) (bool, error) { panic("validator bug") },
			}}},
			check: []string{"boom"},
		},
		{
			name: "cooldown check",
			opts: Options{Cooldown: CooldownConfig{
				Enabled:  true,
				Duration: time.Minute,
				Type:     CooldownGlobal,
				Check:    func(CooldownCheck) bool { panic("check bug") },
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var runs atomic.Int32
			r := newTestRouter(t, tt.opts)
			cmd := countingText("ping", &runs)
			cmd.Validations = tt.check
			require.NoError(t, r.Registry().AddText(cmd))

			s := newFakeSession()
			assert.NotPanics(t, func() {
				r.HandleMessage(s, messageEvent("", "dm", "u1", "!ping"))
			})
			r.Wait()
			assert.Zero(t, runs.Load())

			// the router keeps serving after a gate panic
			cmd.Validations = nil
			r.SetCooldown(CooldownConfig{})
			r.HandleMessage(s, messageEvent("", "dm", "u1", "!ping"))
			r.Wait()
			assert.EqualValues(t, 1, runs.Load())
		})
	}
}

func TestValidationFailureWithNilEmbed(t *testing.T) {
	var runs atomic.Int32
	r := newTestRouter(t, Options{
		Theme: Theme{Error: 0xff0000},
		Validations: []CustomValidation{{
			Name:     "deny",
			Validate: func(ValidationContext) (bool, error) { return false, nil },
			OnFail:   &Reply{Content: "denied", Embeds: []*discordgo.MessageEmbed{nil}},
		}},
	})
	cmd := countingText("guarded", &runs)
	cmd.Validations = []string{"deny"}
	require.NoError(t, r.Registry().AddText(cmd))

	s := newFakeSession()
	assert.NotPanics(t, func() {
		r.HandleMessage(s, messageEvent("", "dm", "u1", "!guarded"))
	})
	r.Wait()

	sends := s.allSends()
	require.Len(t, sends, 1)
	require.Len(t, sends[0].Data.Embeds, 1)
	assert.Equal(t, "denied", sends[0].Data.Embeds[0].Description)
	assert.Equal(t, 0xff0000, sends[0].Data.Embeds[0].Color)
	assert.Zero(t, runs.Load())
}
