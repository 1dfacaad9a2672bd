// Package push abstracts the platform push-messaging gateway. The core
// dispatch logic works against Gateway; FCM is one implementation.
package push

import (
	"context"
	"errors"
)

// ErrUnregistered indicates the destination token is invalid or no longer
// registered with the gateway. The dispatcher reacts by deleting the stored
// token, so repeated failed sends self-heal.
var ErrUnregistered = errors.New("push token unregistered")

// Message is one push to a single device token.
//
// A message with an empty Title is sent as a data-only (silent) push: no
// OS-rendered banner, background-available flag set, high delivery
// priority. A message with a Title carries a visible notification block
// plus the Data payload.
type Message struct {
	Token string
	Title string
	Body  string

	// Data values must all be strings; the push transport carries no other
	// types.
	Data map[string]string
}

// Silent reports whether the message is a data-only push.
func (m *Message) Silent() bool {
	return m.Title == ""
}

// Gateway delivers push messages. Implementations must return an error
// wrapping ErrUnregistered when the gateway reports the token as invalid or
// not registered.
type Gateway interface {
	Send(ctx context.Context, msg *Message) error
}
