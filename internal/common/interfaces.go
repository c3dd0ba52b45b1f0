package common

import (
	"net/http"
)

type Observer interface {
	Update(event NotificationEvent) error
	Name() string
}

type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	Notify(event NotificationEvent)
	NotifyAsync(event NotificationEvent)
}

// Authenticator resolves the caller of an HTTP request (including websocket
// upgrades) to an identity established elsewhere.
type Authenticator interface {
	Authenticate(r *http.Request) (*Identity, error)
}
