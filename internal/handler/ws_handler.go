package handler

import (
	"log"
	"net/http"
	"strings"

	"auren-studio/internal/websocket"
	"auren-studio/pkg/jwt"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	manager   *websocket.Manager
	jwtSecret string
	upgrader  ws.Upgrader
}

func NewWebSocketHandler(manager *websocket.Manager, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		manager:   manager,
		jwtSecret: jwtSecret,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection upgrades an authenticated request onto the change feed.
// Browsers can't set headers on websocket dials, so the token may come in the
// query string as well.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}

	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.ValidateToken(token, h.jwtSecret)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket] failed to upgrade connection: %v", err)
		return
	}

	client := websocket.NewClient(uuid.New().String(), claims.UserID, conn, h.manager)
	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
