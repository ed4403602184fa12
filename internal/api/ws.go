package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// EventsHandler handles GET /games/{gameID}/events, upgrading to a
// websocket that streams the game's event feed as JSON until the
// client disconnects.
func (h *HandlerProvider) EventsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, cancel, err := h.svc.Subscribe(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer cancel()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Error("websocket accept", "game_id", id, "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "feed closed")
				return
			}

			err = wsjson.Write(ctx, conn, ev)
			if err != nil {
				if !errors.Is(err, ctx.Err()) {
					slog.Debug("websocket write", "game_id", id, "error", err)
				}

				return
			}
		}
	}
}
