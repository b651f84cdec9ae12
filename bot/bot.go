package bot

import (
	"fmt"

	"lotto/bot/features/balance"
	"lotto/bot/features/plays"
	"lotto/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	commands []*discordgo.ApplicationCommand

	balance *balance.Feature
	plays   *plays.Feature
}

func New(config Config, accountService service.AccountService, playService service.PlayService, reversalService service.ReversalService) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	bot := &Bot{
		config:  config,
		session: dg,
		balance: balance.New(accountService),
		plays:   plays.New(accountService, playService, reversalService),
	}

	dg.AddHandler(bot.handleCommands)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":  config.GuildID,
		"commands": len(bot.commands),
	}).Info("Discord bot connected")

	return bot, nil
}

// Close removes guild commands and closes the gateway connection
func (b *Bot) Close() error {
	if b.config.GuildID != "" {
		for _, cmd := range b.commands {
			if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.config.GuildID, cmd.ID); err != nil {
				log.Warnf("Failed to delete command %s: %v", cmd.Name, err)
			}
		}
	}
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.balance.HandleCommand(s, i)
	case "play":
		b.plays.HandlePlay(s, i)
	case "plays":
		b.plays.HandleHistory(s, i)
	case "refund":
		b.plays.HandleRefund(s, i)
	case "deleteplay":
		b.plays.HandleDelete(s, i)
	}
}
