package general

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/keshon/dtscommands/internal/core"
)

const (
	rollButtonPrefix = "roll"
	rollOwnerCheck   = "roll-owner"

	defaultSides = 6
	maxSides     = 1000
	maxDice      = 20

	rerollCooldown = 5 * time.Second
)

var errBadRollID = errors.New("malformed roll button id")

// rollRequest is what the reroll button carries in its custom ID:
// "roll:<ownerID>:<sides>:<count>".
type rollRequest struct {
	owner string
	sides int
	count int
}

func (q rollRequest) customID() string {
	return fmt.Sprintf("%s:%s:%d:%d", rollButtonPrefix, q.owner, q.sides, q.count)
}

func parseRollID(id string) (rollRequest, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 4 || parts[0] != rollButtonPrefix || parts[1] == "" {
		return rollRequest{}, errBadRollID
	}
	sides, err := strconv.Atoi(parts[2])
	if err != nil {
		return rollRequest{}, fmt.Errorf("%w: %v", errBadRollID, err)
	}
	count, err := strconv.Atoi(parts[3])
	if err != nil {
		return rollRequest{}, fmt.Errorf("%w: %v", errBadRollID, err)
	}
	q := rollRequest{owner: parts[1], sides: sides, count: count}
	if err := q.check(); err != nil {
		return rollRequest{}, err
	}
	return q, nil
}

func (q rollRequest) check() error {
	if q.sides < 2 || q.sides > maxSides {
		return core.NewValidationError(fmt.Sprintf("A die needs between 2 and %d sides.", maxSides))
	}
	if q.count < 1 || q.count > maxDice {
		return core.NewValidationError(fmt.Sprintf("You can roll between 1 and %d dice.", maxDice))
	}
	return nil
}

func rollSlash(d Deps) *core.SlashCommand {
	minSides, minDice := 2.0, 1.0
	return &core.SlashCommand{
		Definition: &discordgo.ApplicationCommand{
			Name:        "roll",
			Description: "Roll some dice",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "sides",
					Description: "Sides per die (default 6)",
					MinValue:    &minSides,
					MaxValue:    maxSides,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "Number of dice (default 1)",
					MinValue:    &minDice,
					MaxValue:    maxDice,
				},
			},
		},
		Category: CategoryGames,
		Run: func(ctx *core.SlashContext) error {
			q := rollRequest{owner: ctx.User().ID, sides: defaultSides, count: 1}
			if o := ctx.Option("sides"); o != nil {
				q.sides = int(o.IntValue())
			}
			if o := ctx.Option("count"); o != nil {
				q.count = int(o.IntValue())
			}
			if err := q.check(); err != nil {
				return err
			}
			return ctx.Reply(rollReply(q, d.Roll, ctx.Router.Theme().Primary))
		},
	}
}

func rerollButton(d Deps) *core.Button {
	return &core.Button{
		Nickname:    "reroll",
		Description: "Rolls the same dice again",
		Category:    CategoryGames,
		Match:       core.PrefixMatch(rollButtonPrefix),
		Gates: core.Gates{
			Validations: []string{rollOwnerCheck},
			Cooldown: core.CooldownCustom(core.CooldownConfig{
				Enabled:  true,
				Duration: rerollCooldown,
			}),
		},
		Run: func(ctx *core.ButtonContext) error {
			q, err := parseRollID(ctx.CustomID)
			if err != nil {
				return err
			}
			return ctx.Update(rollReply(q, d.Roll, ctx.Router.Theme().Primary))
		},
	}
}

func rollReply(q rollRequest, roll func(int) int, color int) *core.Reply {
	results := make([]string, q.count)
	total := 0
	for i := range results {
		n := roll(q.sides)
		total += n
		results[i] = strconv.Itoa(n)
	}

	desc := fmt.Sprintf("**%d**", total)
	if q.count > 1 {
		desc = strings.Join(results, " + ") + " = " + desc
	}

	e := embed.NewEmbed().
		SetTitle(fmt.Sprintf("🎲 %dd%d", q.count, q.sides)).
		SetDescription(fmt.Sprintf("<@%s> rolled %s", q.owner, desc)).
		SetColor(color)

	return &core.Reply{
		Embeds: []*discordgo.MessageEmbed{e.MessageEmbed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Reroll",
					Style:    discordgo.SecondaryButton,
					CustomID: q.customID(),
				},
			}},
		},
	}
}

// rollOwnerValidation lets only the user who rolled press the reroll button.
func rollOwnerValidation() core.CustomValidation {
	return core.CustomValidation{
		Name: rollOwnerCheck,
		Validate: func(ctx core.ValidationContext) (bool, error) {
			if ctx.Interaction == nil || ctx.Interaction.Type != discordgo.InteractionMessageComponent {
				return true, nil
			}
			q, err := parseRollID(ctx.Interaction.MessageComponentData().CustomID)
			if err != nil {
				return false, err
			}
			actor := ctx.Actor()
			return actor != nil && actor.ID == q.owner, nil
		},
		OnFail: core.Text("Only the person who rolled can reroll these dice."),
	}
}
