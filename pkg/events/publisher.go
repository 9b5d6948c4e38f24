package events

import (
	"context"
)

// Publisher pushes catalog events onto the broker. The write handlers
// accept a nil Publisher and simply skip publishing, so the API can
// run without a broker attached.
type Publisher interface {
	Publish(ctx context.Context, exchange string, event *Event, headers Headers) error
	Close() error
}
