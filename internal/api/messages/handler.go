package messages

import (
	"net/http"

	"github.com/Vasu1712/socialsync-backend/internal/api/respond"
	"github.com/Vasu1712/socialsync-backend/internal/auth"
	"github.com/Vasu1712/socialsync-backend/internal/chat"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MessageHandler serves the pull side of conversations. Every route runs
// behind auth.Middleware.
type MessageHandler struct {
	Chat   *chat.Service
	Logger *zap.Logger
}

type sendRequest struct {
	To          string              `json:"to" validate:"required"`
	Text        string              `json:"text"`
	Attachments []models.Attachment `json:"attachments" validate:"omitempty,max=10,dive"`
}

type sendToUserRequest struct {
	Text        string              `json:"text"`
	Attachments []models.Attachment `json:"attachments" validate:"omitempty,max=10,dive"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type markReadResponse struct {
	ConversationKey string `json:"conversationKey"`
	Marked          int    `json:"marked"`
}

type onlineResponse struct {
	Users []string `json:"users"`
}

func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	list, err := h.Chat.ListConversations(r.Context(), id.UserID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	msgs, err := h.Chat.Messages(r.Context(), id.UserID, mux.Vars(r)["key"])
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) GetMessagesWithUser(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	history, err := h.Chat.MessagesWith(r.Context(), id.UserID, mux.Vars(r)["username"])
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, history)
}

func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req sendRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	outcome, err := h.Chat.Send(r.Context(), chat.SendRequest{
		SenderID:    id.UserID,
		RecipientID: req.To,
		Text:        req.Text,
		Attachments: req.Attachments,
	})
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, outcome.Message)
}

func (h *MessageHandler) SendMessageToUser(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req sendToUserRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	outcome, err := h.Chat.SendToUsername(r.Context(), id.UserID, mux.Vars(r)["username"], req.Text, req.Attachments)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, outcome.Message)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	key := mux.Vars(r)["key"]
	n, err := h.Chat.MarkRead(r.Context(), key, id.UserID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, markReadResponse{ConversationKey: key, Marked: n})
}

func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	n, err := h.Chat.UnreadCount(r.Context(), id.UserID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *MessageHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Chat.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *MessageHandler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	respond.JSON(w, http.StatusOK, onlineResponse{Users: h.Chat.OnlineUsers(id.UserID)})
}

func (h *MessageHandler) LastSeen(w http.ResponseWriter, r *http.Request) {
	p, err := h.Chat.Presence(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}
