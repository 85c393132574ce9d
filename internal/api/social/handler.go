package social

import (
	"net/http"

	"github.com/Vasu1712/socialsync-backend/internal/api/respond"
	"github.com/Vasu1712/socialsync-backend/internal/auth"
	"github.com/Vasu1712/socialsync-backend/internal/social"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SocialHandler exposes the actions that notify another user.
type SocialHandler struct {
	Social *social.Service
	Logger *zap.Logger
}

func (h *SocialHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	res, err := h.Social.ToggleLike(r.Context(), mux.Vars(r)["postId"], id.UserID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *SocialHandler) Follow(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	res, err := h.Social.Follow(r.Context(), id.UserID, mux.Vars(r)["userId"])
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	respond.JSON(w, status, res)
}
