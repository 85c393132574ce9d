package notifications

import (
	"net/http"
	"strconv"

	"github.com/Vasu1712/socialsync-backend/internal/api/respond"
	"github.com/Vasu1712/socialsync-backend/internal/auth"
	"github.com/Vasu1712/socialsync-backend/internal/chat"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	Notifier *chat.Notifier
	Logger   *zap.Logger
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(w, h.Logger, respond.ErrBadRequest)
			return
		}
		limit = n
	}
	list, err := h.Notifier.List(r.Context(), id.UserID, limit)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	if err := h.Notifier.MarkRead(r.Context(), id.UserID, mux.Vars(r)["id"]); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	n, err := h.Notifier.MarkAllRead(r.Context(), id.UserID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"marked": n})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	n, err := h.Notifier.UnreadCount(r.Context(), id.UserID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"count": n})
}
