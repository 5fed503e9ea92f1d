package app

import (
	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/remora/internal/config"
	"github.com/nfrund/remora/internal/hub"
	"github.com/nfrund/remora/internal/pubsub"
	"github.com/nfrund/remora/internal/registry"
	"github.com/nfrund/remora/internal/rendering"
)

// Dependencies holds the core services that are required by the
// application's modules. The server builds one of these and hands it to the
// module factories.
type Dependencies struct {
	Config     config.Provider
	Registry   *registry.Registry
	DB         *surrealdb.DB
	Publisher  pubsub.Publisher
	Subscriber pubsub.Subscriber
	Renderer   rendering.Renderer
	Hub        *hub.Hub
}
