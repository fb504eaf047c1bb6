package core

import "github.com/vovakirdan/wirehub-server/internal/proto"

// Hooks is the capability surface the embedding application plugs in.
// Every method may be a no-op; embed NopHooks and override what you need.
type Hooks interface {
	// OnMessageReceived fires for every decoded inbound message.
	OnMessageReceived(m *proto.Message)
	// OnServerStopped fires once when the accept loop has terminated.
	OnServerStopped()
	// OnClientConnected fires when a connection is accepted and registered.
	OnClientConnected(c *Client)
	// OnClientLogin fires after a successful login.
	OnClientLogin(c *Client)
	// OnClientDisconnected fires once per eviction.
	OnClientDisconnected(c *Client)
	// OnLogMessage receives every emitted log line.
	OnLogMessage(line string)
}

// NopHooks implements Hooks with no-ops.
type NopHooks struct{}

func (NopHooks) OnMessageReceived(*proto.Message) {}
func (NopHooks) OnServerStopped()                 {}
func (NopHooks) OnClientConnected(*Client)        {}
func (NopHooks) OnClientLogin(*Client)            {}
func (NopHooks) OnClientDisconnected(*Client)     {}
func (NopHooks) OnLogMessage(string)              {}
