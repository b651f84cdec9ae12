package api

import (
	"net/http"
	"strconv"
	"time"

	"lotto/models"
	"lotto/service"

	log "github.com/sirupsen/logrus"
)

// Handler exposes the ledger services over HTTP
type Handler struct {
	accounts service.AccountService
	plays    service.PlayService
	reversal service.ReversalService
	tokens   *TokenIssuer
}

// NewHandler creates a new HTTP handler set
func NewHandler(accounts service.AccountService, plays service.PlayService, reversal service.ReversalService, tokens *TokenIssuer) *Handler {
	return &Handler{
		accounts: accounts,
		plays:    plays,
		reversal: reversal,
		tokens:   tokens,
	}
}

type accountResponse struct {
	OK       bool   `json:"ok"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

type sessionResponse struct {
	OK        bool      `json:"ok"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type placePlayResponse struct {
	OK         bool               `json:"ok"`
	Message    string             `json:"message"`
	TotalWin   int64              `json:"totalWin"`
	TotalBet   int64              `json:"totalBet"`
	Draw       string             `json:"draw"`
	PlayTime   time.Time          `json:"play_time"`
	NewBalance int64              `json:"new_balance"`
	Tickets    []models.Ticket    `json:"tickets"`
	Rejected   []models.Rejection `json:"rejected"`
}

type listPlaysResponse struct {
	OK    bool           `json:"ok"`
	Plays []*models.Play `json:"plays"`
}

type deletePlayResponse struct {
	OK bool `json:"ok"`
	*models.DeleteResult
}

type editPlayResponse struct {
	OK bool `json:"ok"`
	*models.EditResult
}

type refundPlayResponse struct {
	OK bool `json:"ok"`
	*models.RefundResult
}

// Register handles POST /api/accounts
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, accountResponse{OK: true, Username: account.Username, Balance: account.Balance})
}

// Login handles POST /api/sessions
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(account.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.WithFields(log.Fields{
		"requestID": RequestIDFromCtx(r.Context()),
		"username":  account.Username,
	}).Info("Session issued")

	writeJSON(w, http.StatusOK, sessionResponse{
		OK:        true,
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
	})
}

// Balance handles GET /api/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	username := UsernameFromCtx(r.Context())
	balance, err := h.accounts.GetBalance(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{OK: true, Username: username, Balance: balance})
}

// PlacePlay handles POST /api/plays
func (h *Handler) PlacePlay(w http.ResponseWriter, r *http.Request) {
	var req placePlayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.plays.PlacePlay(r.Context(), UsernameFromCtx(r.Context()), req.cart())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	rejected := result.Rejected
	if rejected == nil {
		rejected = []models.Rejection{}
	}

	writeJSON(w, http.StatusOK, placePlayResponse{
		OK:         true,
		Message:    result.Message,
		TotalWin:   result.TotalWin,
		TotalBet:   result.TotalBet,
		Draw:       result.Draw,
		PlayTime:   result.PlayTime,
		NewBalance: result.NewBalance,
		Tickets:    result.Tickets,
		Rejected:   rejected,
	})
}

// ListPlays handles GET /api/plays
func (h *Handler) ListPlays(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultHistoryRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, r, http.StatusBadRequest, reasonBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	plays, err := h.plays.ListPlays(r.Context(), UsernameFromCtx(r.Context()), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if plays == nil {
		plays = []*models.Play{}
	}

	writeJSON(w, http.StatusOK, listPlaysResponse{OK: true, Plays: plays})
}

// DeletePlay handles POST /api/plays/delete
func (h *Handler) DeletePlay(w http.ResponseWriter, r *http.Request) {
	key, ok := h.readPlayKey(w, r)
	if !ok {
		return
	}

	result, err := h.reversal.DeletePlay(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletePlayResponse{OK: true, DeleteResult: result})
}

// EditPlay handles POST /api/plays/edit
func (h *Handler) EditPlay(w http.ResponseWriter, r *http.Request) {
	var req editPlayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key, err := req.key(UsernameFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, reasonBadRequest, err.Error())
		return
	}

	result, err := h.reversal.EditPlay(r.Context(), req.editRequest(key))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editPlayResponse{OK: true, EditResult: result})
}

// RefundPlay handles POST /api/plays/refund
func (h *Handler) RefundPlay(w http.ResponseWriter, r *http.Request) {
	key, ok := h.readPlayKey(w, r)
	if !ok {
		return
	}

	result, err := h.reversal.RefundPlay(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refundPlayResponse{OK: true, RefundResult: result})
}

func (h *Handler) readPlayKey(w http.ResponseWriter, r *http.Request) (models.PlayKey, bool) {
	var req playKeyRequest
	if !decodeAndValidate(w, r, &req) {
		return models.PlayKey{}, false
	}

	key, err := req.key(UsernameFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, reasonBadRequest, err.Error())
		return models.PlayKey{}, false
	}
	return key, true
}
