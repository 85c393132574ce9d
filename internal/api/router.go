// Package api assembles the HTTP surface: REST routes under /api/v1 and the
// live endpoint at /ws.
package api

import (
	"net/http"
	"time"

	"github.com/Vasu1712/socialsync-backend/internal/api/live"
	"github.com/Vasu1712/socialsync-backend/internal/api/messages"
	"github.com/Vasu1712/socialsync-backend/internal/api/notifications"
	"github.com/Vasu1712/socialsync-backend/internal/api/respond"
	apisocial "github.com/Vasu1712/socialsync-backend/internal/api/social"
	"github.com/Vasu1712/socialsync-backend/internal/auth"
	"github.com/Vasu1712/socialsync-backend/internal/chat"
	"github.com/Vasu1712/socialsync-backend/internal/middleware"
	"github.com/Vasu1712/socialsync-backend/internal/social"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Dependencies struct {
	Chat         *chat.Service
	Social       *social.Service
	Verifier     auth.Verifier
	Client       ws.ClientConfig
	StoreTimeout time.Duration
	Origins      []string
	Logger       *zap.Logger
}

func NewRouter(d Dependencies) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(d.Logger.Named("http")))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	live.RegisterLiveRoutes(r, &live.LiveHandler{
		Chat:         d.Chat,
		Verifier:     d.Verifier,
		Upgrader:     live.NewUpgrader(d.Origins),
		Client:       d.Client,
		StoreTimeout: d.StoreTimeout,
		Logger:       d.Logger.Named("live"),
	})

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(auth.Middleware(d.Verifier, func(w http.ResponseWriter, err error) {
		respond.Error(w, d.Logger, err)
	}))
	messages.RegisterMessageRoutes(v1, &messages.MessageHandler{Chat: d.Chat, Logger: d.Logger})
	notifications.RegisterNotificationRoutes(v1, &notifications.NotificationHandler{Notifier: d.Chat.Notifier(), Logger: d.Logger})
	apisocial.RegisterSocialRoutes(v1, &apisocial.SocialHandler{Social: d.Social, Logger: d.Logger})

	// CORS wraps the router so preflight requests never reach route matching.
	return middleware.CORS(d.Origins)(r)
}
