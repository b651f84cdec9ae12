package balance

import (
	"context"
	"fmt"

	"lotto/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)
	if user == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	account, err := f.accountService.GetOrCreate(ctx, common.AccountName(user))
	if err != nil {
		log.WithFields(log.Fields{
			"discordID": user.ID,
			"error":     err,
		}).Error("Failed to load account for balance")
		common.RespondWithError(s, i, common.ErrorMessage(err))
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, user)
	message := fmt.Sprintf("%s, your current balance: **%s**", displayName, common.FormatBalance(account.Balance))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}
