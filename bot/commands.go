package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func playKeyOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "play_time",
			Description: "Play time as shown by /plays",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "draw",
			Description: "The 4 digit draw of the play",
			Required:    true,
			MinLength:   intPtr(4),
			MaxLength:   4,
		},
	}
}

func intPtr(v int) *int {
	return &v
}

// slashCommands lists every command the bot serves
func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your current balance",
		},
		{
			Name:        "play",
			Description: "Buy tickets against a fresh 4 digit draw",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tickets",
					Description: "Tickets like 1234:100 34:50:AB ABD",
					Required:    true,
				},
			},
		},
		{
			Name:        "plays",
			Description: "Show your recent plays",
		},
		{
			Name:        "refund",
			Description: "Refund the total bet of a play once",
			Options:     playKeyOptions(),
		},
		{
			Name:        "deleteplay",
			Description: "Delete a play and reverse its effect on your balance",
			Options:     playKeyOptions(),
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range slashCommands() {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
		b.commands = append(b.commands, created)
	}
	return nil
}
