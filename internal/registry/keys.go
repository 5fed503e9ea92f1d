package registry

import (
	"github.com/nfrund/remora/internal/pubsub"
)

// Framework-level service keys. Service keys owned by a module live next to
// the service they register, e.g. announcer.LogKey.
var (
	// KeyPublisher is the application-wide message bus publisher.
	KeyPublisher = Key[pubsub.Publisher]("framework.publisher")

	// KeySubscriber is the application-wide message bus subscriber.
	KeySubscriber = Key[pubsub.Subscriber]("framework.subscriber")

	// To add a new framework key:
	// KeyGreeter = Key[GreeterService]("framework.greeter")
)
