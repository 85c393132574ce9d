package live

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Vasu1712/socialsync-backend/internal/api/respond"
	"github.com/Vasu1712/socialsync-backend/internal/auth"
	"github.com/Vasu1712/socialsync-backend/internal/chat"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// LiveHandler upgrades authenticated requests to websocket connections and
// runs one read loop per connection.
type LiveHandler struct {
	Chat         *chat.Service
	Verifier     auth.Verifier
	Upgrader     websocket.Upgrader
	Client       ws.ClientConfig
	StoreTimeout time.Duration
	Logger       *zap.Logger
}

// NewUpgrader accepts browser connections from the given origins. An empty
// list or "*" accepts any origin.
func NewUpgrader(origins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(origins) == 0 || lo.Contains(origins, "*") {
				return true
			}
			return lo.Contains(origins, origin)
		},
	}
}

func RegisterLiveRoutes(r *mux.Router, handler *LiveHandler) {
	r.HandleFunc("/ws", handler.ServeWS).Methods(http.MethodGet)
}

func (h *LiveHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	id, err := h.Verifier.Verify(auth.TokenFromRequest(r))
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Debug("websocket upgrade failed", zap.String("user_id", id.UserID), zap.Error(err))
		return
	}

	client := ws.NewClient(conn, id.UserID, h.Client, h.Logger)
	go client.WritePump()
	h.Chat.Connect(id.UserID, id.Username, client)

	client.ReadPump(func(in ws.Intent) {
		h.handleIntent(client, id, in)
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.StoreTimeout)
	defer cancel()
	h.Chat.Disconnect(ctx, id.UserID, client)
}

func (h *LiveHandler) handleIntent(client *ws.Client, id auth.Identity, in ws.Intent) {
	ctx, cancel := context.WithTimeout(context.Background(), h.StoreTimeout)
	defer cancel()

	switch in.Type {
	case ws.IntentSendMessage:
		var data ws.SendMessageIntent
		if err := decodeIntent(in, &data); err != nil {
			h.replyError(client, err)
			return
		}
		outcome, err := h.Chat.Send(ctx, chat.SendRequest{
			SenderID:    id.UserID,
			RecipientID: data.To,
			Text:        data.Text,
			Attachments: data.Attachments,
		})
		if err != nil {
			h.replyError(client, err)
			return
		}
		_ = client.Push(ws.NewEvent(ws.EventMessageSent, ws.MessagePayload{Message: outcome.Message}))

	case ws.IntentTyping:
		var data ws.TypingIntent
		if err := decodeIntent(in, &data); err != nil {
			h.replyError(client, err)
			return
		}
		if err := h.Chat.Typing(id.UserID, data.To, data.IsTyping); err != nil {
			h.replyError(client, err)
		}

	case ws.IntentMarkRead:
		var data ws.MarkReadIntent
		if err := decodeIntent(in, &data); err != nil {
			h.replyError(client, err)
			return
		}
		if _, err := h.Chat.MarkRead(ctx, data.ConversationKey, id.UserID); err != nil {
			h.replyError(client, err)
		}

	case ws.IntentGetOnlineUsers:
		_ = client.Push(ws.NewEvent(ws.EventOnlineUsers, ws.OnlineUsers{Users: h.Chat.OnlineUsers(id.UserID)}))

	default:
		_ = client.Push(ws.NewEvent(ws.EventError, ws.ErrorPayload{Code: "unknown_type", Message: "unknown event type " + in.Type}))
	}
}

// replyError reports a failed intent to the connection that sent it.
func (h *LiveHandler) replyError(client *ws.Client, err error) {
	status, kind := respond.Classify(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		h.Logger.Error("live intent failed", zap.String("user_id", client.UserID()), zap.Error(err))
		message = http.StatusText(status)
	}
	_ = client.Push(ws.NewEvent(ws.EventError, ws.ErrorPayload{Code: kind, Message: message}))
}

func decodeIntent(in ws.Intent, dst any) error {
	if len(in.Data) == 0 {
		return respond.Validate(dst)
	}
	if err := json.Unmarshal(in.Data, dst); err != nil {
		return respond.ErrBadRequest
	}
	return respond.Validate(dst)
}
