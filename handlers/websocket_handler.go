package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/chess-swiss/pairing"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub *pairing.Hub
}

func NewWebSocketHandler(hub *pairing.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs подключает клиента к комнате турнира: все события туров и
// таблицы этого турнира рассылаются в комнату.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "id")
	if tournamentID == "" {
		http.Error(w, "missing tournament id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket connection", "tournament_id", tournamentID, "error", err)
		return
	}

	client := &pairing.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: tournamentID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	slog.Info("websocket client joined tournament room", "room", tournamentID)
}
