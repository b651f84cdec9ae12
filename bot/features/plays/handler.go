package plays

import (
	"context"
	"fmt"

	"lotto/bot/common"
	"lotto/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func optionString(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// account opens the ledger account of the invoking user on first use
func (f *Feature) account(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*models.Account, bool) {
	user := common.InteractionUser(i)
	if user == nil {
		common.FollowUpWithError(s, i, "Unable to process request. Please try again.")
		return nil, false
	}

	account, err := f.accountService.GetOrCreate(ctx, common.AccountName(user))
	if err != nil {
		log.WithFields(log.Fields{
			"discordID": user.ID,
			"error":     err,
		}).Error("Failed to load account")
		common.FollowUpWithError(s, i, common.ErrorMessage(err))
		return nil, false
	}
	return account, true
}

func (f *Feature) handlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	items, err := ParseTickets(optionString(i, "tickets"))
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring play response: %v", err)
		return
	}

	ctx := context.Background()
	account, ok := f.account(ctx, s, i)
	if !ok {
		return
	}

	result, err := f.playService.PlacePlay(ctx, account.Username, items)
	if err != nil {
		log.WithFields(log.Fields{
			"username": account.Username,
			"error":    err,
		}).Warn("Play from Discord failed")
		common.FollowUpWithError(s, i, common.ErrorMessage(err))
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, common.InteractionUser(i))
	common.FollowUpWithEmbed(s, i, BuildPlayResultEmbed(displayName, result), false)
}

func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring plays response: %v", err)
		return
	}

	ctx := context.Background()
	account, ok := f.account(ctx, s, i)
	if !ok {
		return
	}

	plays, err := f.playService.ListPlays(ctx, account.Username, HistoryLimit)
	if err != nil {
		log.WithFields(log.Fields{
			"username": account.Username,
			"error":    err,
		}).Error("Failed to list plays")
		common.FollowUpWithError(s, i, common.ErrorMessage(err))
		return
	}

	common.FollowUpWithEmbed(s, i, BuildHistoryEmbed(plays), true)
}

// playKey reads the play_time and draw options of /refund and /deleteplay
func playKey(i *discordgo.InteractionCreate, username string) (models.PlayKey, error) {
	playTime, err := models.ParsePlayTime(optionString(i, "play_time"))
	if err != nil {
		return models.PlayKey{}, fmt.Errorf("play time must look like 2024-05-01 12:30:45.123456")
	}
	return models.PlayKey{Username: username, PlayTime: playTime, Draw: optionString(i, "draw")}, nil
}

func (f *Feature) handleRefund(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring refund response: %v", err)
		return
	}

	ctx := context.Background()
	account, ok := f.account(ctx, s, i)
	if !ok {
		return
	}

	key, err := playKey(i, account.Username)
	if err != nil {
		common.FollowUpWithError(s, i, err.Error())
		return
	}

	result, err := f.reversalService.RefundPlay(ctx, key)
	if err != nil {
		common.FollowUpWithError(s, i, common.ErrorMessage(err))
		return
	}

	common.FollowUpWithEmbed(s, i, BuildRefundEmbed(key, result), true)
}

func (f *Feature) handleDelete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring delete response: %v", err)
		return
	}

	ctx := context.Background()
	account, ok := f.account(ctx, s, i)
	if !ok {
		return
	}

	key, err := playKey(i, account.Username)
	if err != nil {
		common.FollowUpWithError(s, i, err.Error())
		return
	}

	result, err := f.reversalService.DeletePlay(ctx, key)
	if err != nil {
		common.FollowUpWithError(s, i, common.ErrorMessage(err))
		return
	}

	common.FollowUpWithEmbed(s, i, BuildDeleteEmbed(key, result), true)
}
