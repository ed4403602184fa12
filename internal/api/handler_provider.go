package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hexvale/frontier/internal/game"
	"github.com/hexvale/frontier/internal/game/bank"
	"github.com/hexvale/frontier/internal/game/devcard"
	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
	"github.com/hexvale/frontier/internal/game/trade"
	"github.com/hexvale/frontier/internal/repos/settlements"
	"github.com/hexvale/frontier/internal/services/gamesvc"
)

// HandlerProvider wraps the game service and exposes HTTP handlers.
type HandlerProvider struct {
	svc *gamesvc.Service
}

// NewHandler returns a new Handler provider.
func NewHandler(svc *gamesvc.Service) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain errors onto HTTP statuses: unknown
// entities are 404, rule violations 409, everything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gamesvc.ErrGameNotFound),
		errors.Is(err, bank.ErrTradeNotFound),
		errors.Is(err, game.ErrUnknownPlayer),
		errors.Is(err, game.ErrUnknownTile):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrBadRoll):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, trade.ErrInvalidState),
		errors.Is(err, trade.ErrNotAccepted),
		errors.Is(err, trade.ErrSelfParty),
		errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, bank.ErrInsufficientSupply),
		errors.Is(err, bank.ErrNotProposer),
		errors.Is(err, devcard.ErrExhausted),
		errors.Is(err, settlements.ErrAlreadySettled),
		errors.Is(err, game.ErrNoSettlement),
		errors.Is(err, game.ErrCardNotHeld),
		errors.Is(err, game.ErrUnplayable):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody reads a capped JSON body into dst, rejecting unknown
// fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}

		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

func parseGameID(r *http.Request) (gamesvc.GameID, error) {
	raw := chi.URLParam(r, "gameID")

	id, err := uuid.Parse(raw)
	if err != nil {
		return gamesvc.GameID{}, fmt.Errorf("invalid gameID: %w", err)
	}

	return id, nil
}

func parseTradeID(r *http.Request) (bank.TradeID, error) {
	raw := chi.URLParam(r, "tradeID")

	id, err := uuid.Parse(raw)
	if err != nil {
		return bank.TradeID{}, fmt.Errorf("invalid tradeID: %w", err)
	}

	return id, nil
}

// --- Handlers ---

type createGameRequest struct {
	Colours []string `json:"colours"`
}

// CreateGameHandler handles POST /games
func (h *HandlerProvider) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	colours := make([]player.Colour, 0, len(req.Colours))

	for _, raw := range req.Colours {
		colour, err := player.ParseColour(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		colours = append(colours, colour)
	}

	id, state, err := h.svc.Create(r.Context(), colours)
	if err != nil {
		// Player-count and duplicate-colour failures are caller bugs.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"gameId": id,
		"state":  json.RawMessage(state),
	})
}

// GetStateHandler handles GET /games/{gameID}
func (h *HandlerProvider) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.svc.State(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, json.RawMessage(state))
}

type rollRequest struct {
	Roll int `json:"roll"`
}

// RollHandler handles POST /games/{gameID}/roll
func (h *HandlerProvider) RollHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req rollRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payouts, err := h.svc.Roll(r.Context(), id, req.Roll)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"payouts": payouts})
}

type buildRequest struct {
	Colour   string `json:"colour"`
	Building string `json:"building"`
	Tile     int    `json:"tile"`
}

// BuildHandler handles POST /games/{gameID}/build
func (h *HandlerProvider) BuildHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req buildRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	colour, err := player.ParseColour(req.Colour)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	building, err := game.ParseBuilding(req.Building)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.svc.Build(r.Context(), id, colour, building, req.Tile)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type buyCardRequest struct {
	Colour string `json:"colour"`
}

// BuyCardHandler handles POST /games/{gameID}/dev-cards/buy
func (h *HandlerProvider) BuyCardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req buyCardRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	colour, err := player.ParseColour(req.Colour)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind, err := h.svc.BuyCard(r.Context(), id, colour)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"card": kind.String()})
}

type playCardRequest struct {
	Colour string   `json:"colour"`
	Card   string   `json:"card"`
	Picks  []string `json:"picks,omitempty"`
}

// PlayCardHandler handles POST /games/{gameID}/dev-cards/play
func (h *HandlerProvider) PlayCardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req playCardRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	colour, err := player.ParseColour(req.Colour)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind, err := devcard.ParseKind(req.Card)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	picks := make([]resource.Kind, 0, len(req.Picks))

	for _, raw := range req.Picks {
		pick, err := resource.ParseKind(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		picks = append(picks, pick)
	}

	err = h.svc.PlayCard(r.Context(), id, colour, kind, picks...)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type maritimeRequest struct {
	Colour string `json:"colour"`
	Give   string `json:"give"`
	Want   string `json:"want"`
}

// MaritimeTradeHandler handles POST /games/{gameID}/maritime
func (h *HandlerProvider) MaritimeTradeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req maritimeRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	colour, err := player.ParseColour(req.Colour)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	give, err := resource.ParseKind(req.Give)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	want, err := resource.ParseKind(req.Want)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.svc.MaritimeTrade(r.Context(), id, colour, give, want)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type proposeTradeRequest struct {
	From     string        `json:"from"`
	Offering resource.Pool `json:"offering"`
	Wants    resource.Pool `json:"wants"`
}

// ProposeTradeHandler handles POST /games/{gameID}/trades
func (h *HandlerProvider) ProposeTradeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req proposeTradeRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	from, err := player.ParseColour(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tradeID, err := h.svc.ProposeTrade(r.Context(), id, from, req.Offering, req.Wants)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"tradeId": tradeID})
}

// ListTradesHandler handles GET /games/{gameID}/trades
func (h *HandlerProvider) ListTradesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trades, err := h.svc.Trades(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"trades": trades})
}

// GetTradeHandler handles GET /games/{gameID}/trades/{tradeID}
func (h *HandlerProvider) GetTradeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tradeID, err := parseTradeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tr, err := h.svc.TradeByID(r.Context(), id, tradeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tr)
}

type tradePartyRequest struct {
	Colour string `json:"colour"`
}

func (h *HandlerProvider) tradePartyCall(
	w http.ResponseWriter, r *http.Request,
	call func(id gamesvc.GameID, tradeID bank.TradeID, colour player.Colour) error,
) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tradeID, err := parseTradeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req tradePartyRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	colour, err := player.ParseColour(req.Colour)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = call(id, tradeID, colour)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AcceptTradeHandler handles POST /games/{gameID}/trades/{tradeID}/accept
func (h *HandlerProvider) AcceptTradeHandler(w http.ResponseWriter, r *http.Request) {
	h.tradePartyCall(w, r, func(id gamesvc.GameID, tradeID bank.TradeID, colour player.Colour) error {
		return h.svc.AcceptTrade(r.Context(), id, tradeID, colour)
	})
}

// ConfirmTradeHandler handles POST /games/{gameID}/trades/{tradeID}/confirm
func (h *HandlerProvider) ConfirmTradeHandler(w http.ResponseWriter, r *http.Request) {
	h.tradePartyCall(w, r, func(id gamesvc.GameID, tradeID bank.TradeID, colour player.Colour) error {
		return h.svc.ConfirmTrade(r.Context(), id, tradeID, colour)
	})
}

// CancelTradeHandler handles POST /games/{gameID}/trades/{tradeID}/cancel
func (h *HandlerProvider) CancelTradeHandler(w http.ResponseWriter, r *http.Request) {
	h.tradePartyCall(w, r, func(id gamesvc.GameID, tradeID bank.TradeID, colour player.Colour) error {
		return h.svc.CancelTrade(r.Context(), id, tradeID, colour)
	})
}

// SettleTradeHandler handles POST /games/{gameID}/trades/{tradeID}/settle
func (h *HandlerProvider) SettleTradeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tradeID, err := parseTradeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	final, err := h.svc.SettleTrade(r.Context(), id, tradeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, final)
}
