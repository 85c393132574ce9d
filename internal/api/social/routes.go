package social

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterSocialRoutes(r *mux.Router, handler *SocialHandler) {
	r.HandleFunc("/posts/{postId}/like", handler.ToggleLike).Methods(http.MethodPost)
	r.HandleFunc("/users/{userId}/follow", handler.Follow).Methods(http.MethodPost)
}
