package handlers

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/isdelr/machine-monitor-be/internal/auth"
	"github.com/isdelr/machine-monitor-be/internal/services"
	ws "github.com/isdelr/machine-monitor-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades authenticated requests onto the live prediction feed.
type WebSocketHandler struct {
	hub           *ws.Hub
	predictionSvc services.PredictionServiceProvider
	upgrader      websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Browser upgrades are
// accepted only from allowedOrigins; requests without an Origin header are
// always accepted.
func NewWebSocketHandler(hub *ws.Hub, predictionSvc services.PredictionServiceProvider, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		predictionSvc: predictionSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID)
	// The first frame is sent immediately instead of waiting for the next tick.
	client.Send <- ws.NewPredictionMessage(h.predictionSvc.Predict())

	if !h.hub.Register(client) {
		closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
			log.Debug().Err(err).Int64("user_id", claims.UserID).Msg("Failed to send close frame")
		}
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump()
}
