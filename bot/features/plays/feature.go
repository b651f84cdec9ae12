package plays

import (
	"lotto/service"

	"github.com/bwmarrin/discordgo"
)

// HistoryLimit is the number of wager rows /plays groups into plays
const HistoryLimit = 30

type Feature struct {
	accountService  service.AccountService
	playService     service.PlayService
	reversalService service.ReversalService
}

func New(accountService service.AccountService, playService service.PlayService, reversalService service.ReversalService) *Feature {
	return &Feature{
		accountService:  accountService,
		playService:     playService,
		reversalService: reversalService,
	}
}

// HandlePlay handles /play
func (f *Feature) HandlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handlePlay(s, i)
}

// HandleHistory handles /plays
func (f *Feature) HandleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleHistory(s, i)
}

// HandleRefund handles /refund
func (f *Feature) HandleRefund(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleRefund(s, i)
}

// HandleDelete handles /deleteplay
func (f *Feature) HandleDelete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleDelete(s, i)
}
