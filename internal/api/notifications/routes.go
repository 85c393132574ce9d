package notifications

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterNotificationRoutes(r *mux.Router, handler *NotificationHandler) {
	r.HandleFunc("/notifications", handler.List).Methods(http.MethodGet)
	r.HandleFunc("/notifications/unread/count", handler.UnreadCount).Methods(http.MethodGet)
	r.HandleFunc("/notifications/read-all", handler.MarkAllRead).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}/read", handler.MarkRead).Methods(http.MethodPost)
}
