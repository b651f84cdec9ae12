package common

import (
	"github.com/bwmarrin/discordgo"
)

// AccountName is the ledger username for a Discord user. The ID is stable across renames
// and cannot collide with accounts registered over HTTP.
func AccountName(user *discordgo.User) string {
	return "discord:" + user.ID
}

// InteractionUser returns the invoking user for guild and direct message interactions
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// GetDisplayName returns the server-specific display name for a user
// Falls back to username if nickname is not set or if there's an error
func GetDisplayName(s *discordgo.Session, guildID string, user *discordgo.User) string {
	if guildID != "" {
		member, err := s.GuildMember(guildID, user.ID)
		if err == nil && member != nil && member.Nick != "" {
			return member.Nick
		}
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
