package messages

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterMessageRoutes registers the conversation, message and user lookup
// routes on an authenticated router.
func RegisterMessageRoutes(r *mux.Router, handler *MessageHandler) {
	r.HandleFunc("/conversations", handler.ListConversations).Methods(http.MethodGet)

	// Username routes first so "user" is never taken for a conversation key.
	r.HandleFunc("/conversations/user/{username}", handler.GetMessagesWithUser).Methods(http.MethodGet)
	r.HandleFunc("/conversations/user/{username}/messages", handler.SendMessageToUser).Methods(http.MethodPost)

	r.HandleFunc("/conversations/{key}/messages", handler.GetMessages).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{key}/read", handler.MarkRead).Methods(http.MethodPost)

	r.HandleFunc("/messages", handler.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages/unread/count", handler.UnreadCount).Methods(http.MethodGet)

	r.HandleFunc("/users/search", handler.SearchUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/online", handler.OnlineUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{userId}/last-seen", handler.LastSeen).Methods(http.MethodGet)
}
