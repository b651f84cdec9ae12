package plays

import (
	"fmt"
	"strings"
	"time"

	"lotto/bot/common"
	"lotto/models"
	"lotto/service"

	"github.com/bwmarrin/discordgo"
)

// maxEmbedPlays keeps the history embed under Discord's field limit
const maxEmbedPlays = 10

func ticketLine(num, label string, bet, win int64) string {
	name := num
	if name == "" {
		name = "—"
	}
	if label != "" && label != num {
		name = fmt.Sprintf("%s (%s)", name, label)
	}
	line := fmt.Sprintf("`%s` bet %s", name, common.FormatBalance(bet))
	if win > 0 {
		line += fmt.Sprintf(" → **%s**", common.FormatBalance(win))
	}
	return line
}

// BuildPlayResultEmbed shows the draw, every ticket and the new balance
func BuildPlayResultEmbed(displayName string, result *models.PlaceResult) *discordgo.MessageEmbed {
	color := common.ColorNeutral
	if result.TotalWin > 0 {
		color = common.ColorSuccess
	}

	lines := make([]string, 0, len(result.Tickets))
	for _, ticket := range result.Tickets {
		lines = append(lines, ticketLine(ticket.Num, ticket.Opts.Label, ticket.Bet, ticket.Win))
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎟️ %s drew %s", displayName, result.Draw),
		Description: service.PlayMessage(result.Draw, result.TotalWin),
		Color:       color,
		Timestamp:   result.PlayTime.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Tickets", Value: truncate(strings.Join(lines, "\n"), 1024)},
			{Name: "Total bet", Value: common.FormatBalance(result.TotalBet), Inline: true},
			{Name: "Total win", Value: common.FormatBalance(result.TotalWin), Inline: true},
			{Name: "Balance", Value: common.FormatBalance(result.NewBalance), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("play_time %s", common.FormatPlayTime(result.PlayTime)),
		},
	}

	if len(result.Rejected) > 0 {
		rejected := make([]string, 0, len(result.Rejected))
		for _, r := range result.Rejected {
			rejected = append(rejected, fmt.Sprintf("`%s`: %s", r.Num, r.Reason))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Rejected",
			Value: truncate(strings.Join(rejected, "\n"), 1024),
		})
	}
	return embed
}

// BuildHistoryEmbed lists recent plays with the keys /refund and /deleteplay take
func BuildHistoryEmbed(plays []*models.Play) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📜 Recent plays",
		Color: common.ColorPrimary,
	}
	if len(plays) == 0 {
		embed.Description = "No plays yet. Try `/play tickets:1234:100`."
		return embed
	}

	if len(plays) > maxEmbedPlays {
		plays = plays[:maxEmbedPlays]
	}
	for _, play := range plays {
		lines := make([]string, 0, len(play.Items)+1)
		for _, item := range play.Items {
			lines = append(lines, ticketLine(item.Num, item.Label, item.Bet, item.Win))
		}

		status := fmt.Sprintf("bet %s, win %s", common.FormatBalance(play.TotalBet), common.FormatBalance(play.TotalWin))
		if play.Adjustments != 0 {
			status += fmt.Sprintf(", adjusted %s", common.FormatBalance(play.Adjustments))
		}
		if play.Refunded {
			status += ", refunded"
		}
		lines = append(lines, status)

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s · draw %s", common.FormatPlayTime(play.PlayTime), play.Draw),
			Value: truncate(strings.Join(lines, "\n"), 1024),
		})
	}
	return embed
}

// BuildRefundEmbed confirms a refund
func BuildRefundEmbed(key models.PlayKey, result *models.RefundResult) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "↩️ Play refunded",
		Color: common.ColorSuccess,
		Description: fmt.Sprintf("Refunded **%s** for draw %s at %s. New balance: **%s**",
			common.FormatBalance(result.Refunded), key.Draw, common.FormatPlayTime(key.PlayTime),
			common.FormatBalance(result.NewBalance)),
	}
}

// BuildDeleteEmbed confirms a deleted play
func BuildDeleteEmbed(key models.PlayKey, result *models.DeleteResult) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🗑️ Play deleted",
		Color: common.ColorDanger,
		Description: fmt.Sprintf("Removed draw %s at %s (bet %s, win %s). New balance: **%s**",
			key.Draw, common.FormatPlayTime(key.PlayTime),
			common.FormatBalance(result.DeletedBet), common.FormatBalance(result.DeletedWin),
			common.FormatBalance(result.NewBalance)),
	}
}

func truncate(s string, max int) string {
	if s == "" {
		return "—"
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
