package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"transitfare/internal/catalog"
	"transitfare/internal/hub"
	"transitfare/internal/service"
)

type WSHandler struct {
	hub      *hub.Hub
	fares    *service.Fares
	provider catalog.Provider
	logger   *slog.Logger
}

func NewWSHandler(h *hub.Hub, fares *service.Fares, provider catalog.Provider, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:      h,
		fares:    fares,
		provider: provider,
		logger:   logger.With("handler", "websocket"),
	}
}

// WSMessage is both the request and reply envelope. Replies echo ID.
type WSMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsReply struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

type wsError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	client := hub.NewClient(uuid.New().String(), 64)
	h.hub.Register(client)
	ServerStats.IncWSConnections()
	defer ServerStats.DecWSConnections()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if cat := h.provider.Peek(); !cat.Empty() {
		h.send(client, hub.NewCatalogMessage(cat))
	}

	go h.writeLoop(ctx, conn, client)

	h.readLoop(ctx, conn, client)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug("websocket read error", "client_id", client.ID, "error", err)
			}
			return
		}
		ServerStats.IncWSMessagesIn()

		if msgType != websocket.MessageText {
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("invalid message format", "client_id", client.ID, "error", err)
			h.send(client, wsReply{Type: "error", Payload: wsError{Status: http.StatusBadRequest, Error: "invalid message"}})
			continue
		}

		h.send(client, h.handle(ctx, msg))
	}
}

func (h *WSHandler) handle(ctx context.Context, msg WSMessage) wsReply {
	switch msg.Type {
	case "fare":
		var req FareRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return badPayload(msg)
		}
		res, err := h.fares.Estimate(ctx, req.Start, req.End)
		if err != nil {
			return errorReply(msg, err)
		}
		return wsReply{Type: "fare", ID: msg.ID, Payload: res}

	case "transfer":
		var req ItineraryRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return badPayload(msg)
		}
		notice, err := h.fares.DetectTransfer(ctx, req.Itinerary)
		if err != nil {
			return errorReply(msg, err)
		}
		return wsReply{Type: "transfer", ID: msg.ID, Payload: notice}

	case "quote":
		var req ItineraryRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return badPayload(msg)
		}
		q, err := h.fares.Quote(ctx, req.Itinerary)
		if err != nil {
			return errorReply(msg, err)
		}
		return wsReply{Type: "quote", ID: msg.ID, Payload: q}

	case "ping":
		return wsReply{Type: "pong", ID: msg.ID}

	default:
		return wsReply{Type: "error", ID: msg.ID, Payload: wsError{Status: http.StatusBadRequest, Error: "unknown message type"}}
	}
}

func badPayload(msg WSMessage) wsReply {
	return wsReply{Type: "error", ID: msg.ID, Payload: wsError{Status: http.StatusBadRequest, Error: "invalid payload"}}
}

func errorReply(msg WSMessage, err error) wsReply {
	status, text := statusFor(err)
	return wsReply{Type: "error", ID: msg.ID, Payload: wsError{Status: status, Error: text}}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
			ServerStats.IncWSMessagesOut()

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) send(client *hub.Client, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode reply", "client_id", client.ID, "error", err)
		return
	}

	if !client.Enqueue(data) {
		h.logger.Debug("reply dropped", "client_id", client.ID)
	}
}
