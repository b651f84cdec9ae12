package common

import (
	"errors"
	"fmt"

	"lotto/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// DeferResponse sends a deferred response to give more time for processing
func DeferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: flags,
		},
	})
}

// RespondWithEmbed sends an embed as an interaction response
func RespondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// FollowUpWithEmbed sends an embed as a follow-up to a deferred interaction
func FollowUpWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}

	if _, err := s.FollowupMessageCreate(i.Interaction, false, params); err != nil {
		log.Errorf("Error sending follow-up embed: %v", err)
	}
}

// RespondWithError sends an ephemeral error message
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// ErrorMessage turns a service error into text a player can act on
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInsufficientBalance):
		return "Insufficient balance for this play."
	case errors.Is(err, service.ErrNothingToPlay):
		return "Nothing to play. Use tickets like `1234:100 34:50 AB`."
	case errors.Is(err, service.ErrPlayNotFound):
		return "No play found for that time and draw."
	case errors.Is(err, service.ErrAlreadyRefunded):
		return "That play has already been refunded."
	case errors.Is(err, service.ErrNothingToRefund):
		return "That play has no bet to refund."
	case errors.Is(err, service.ErrInvalidAmount):
		return fmt.Sprintf("Bets must be between 1 and %s.", FormatBalance(service.MaxBet))
	case errors.Is(err, service.ErrMissingParameters):
		return "Play time and a 4 digit draw are required."
	default:
		return "Unable to process request. Please try again."
	}
}
