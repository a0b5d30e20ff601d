// package bus delivers opaque application messages between providers.
//
// Message codes and payloads are agreed out-of-band between the two
// providers involved; the bus enforces no schema. Send must be called
// only from the single coordinating goroutine; receivers are offered no
// concurrency guarantee beyond that.
package bus

import (
	"github.com/Ionic/audacious/internal/plugin"
	"github.com/charmbracelet/log"
)

// Result codes for Send. Values above zero are provider-defined.
const (
	Unhandled = -1
	OK        = 0
)

// Bus routes messages to provider message handlers.
type Bus struct {
	logger *log.Logger
}

// New creates a Bus.
func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.Default()
	}
	return &Bus{logger: logger.With("component", "bus")}
}

// Send delivers one message to the target provider. Returns Unhandled
// when the target has no message handler, without invoking anything; a
// handler that does not recognize code must itself return Unhandled.
// Zero signals success; other non-negative values carry provider-defined
// meaning.
//
// The payload stays owned by the sender. Receivers must not retain it
// past the call.
func (b *Bus) Send(target *plugin.Descriptor, code string, payload []byte) int {
	h, ok := target.Impl.(plugin.MessageHandler)
	if !ok {
		return Unhandled
	}
	result := h.TakeMessage(code, payload)
	if result < 0 {
		b.logger.Debug("message unhandled", "target", target.Name(), "code", code)
		return Unhandled
	}
	return result
}

// Broadcast sends the message to every listed provider and returns how
// many handled it (returned a non-negative result).
func (b *Bus) Broadcast(targets []*plugin.Descriptor, code string, payload []byte) int {
	handled := 0
	for _, d := range targets {
		if b.Send(d, code, payload) >= 0 {
			handled++
		}
	}
	return handled
}
