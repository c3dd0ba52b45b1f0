package wire

import (
	"net/http"

	"github.com/gorilla/mux"

	"skillnest/internal/common"
)

const apiPrefix = "/api/v1"

// Routes mounts the websocket gateway, the attachment server and the API.
// Health is public; everything else under the API prefix needs an identity.
func (app *ChatApplication) Routes() http.Handler {
	r := mux.NewRouter()
	r.Handle("/ws", app.Gateway).Methods(http.MethodGet)
	app.Media.RegisterRoutes(r)

	public := r.PathPrefix(apiPrefix).Subrouter()
	public.Use(common.CORSMiddleware(app.Config.Server.AllowedOrigins))
	app.Health.RegisterRoutes(public)

	api := r.PathPrefix(apiPrefix).Subrouter()
	api.Use(
		common.LoggingMiddleware(app.Logger),
		common.CORSMiddleware(app.Config.Server.AllowedOrigins),
		common.AuthMiddleware(app.Auth, app.Logger),
	)
	app.ChatHTTP.RegisterRoutes(api)
	app.Presence.RegisterRoutes(api)
	app.Users.RegisterRoutes(api)
	app.Notifications.RegisterRoutes(api)
	return r
}

func (app *NotifsApplication) Routes() http.Handler {
	r := mux.NewRouter()

	public := r.PathPrefix(apiPrefix).Subrouter()
	app.Health.RegisterRoutes(public)

	api := r.PathPrefix(apiPrefix).Subrouter()
	api.Use(
		common.LoggingMiddleware(app.Logger),
		common.CORSMiddleware(app.Config.Server.AllowedOrigins),
		common.AuthMiddleware(app.Auth, app.Logger),
	)
	app.Notifications.RegisterRoutes(api)
	return r
}
