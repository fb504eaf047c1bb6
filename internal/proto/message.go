package proto

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServerGUID is the reserved identifier addressing the broker itself.
var ServerGUID = uuid.Nil.String()

// Administrative commands understood by the broker. Command names are
// matched case-insensitively on the wire.
const (
	CommandEcho                   = "Echo"
	CommandLogin                  = "Login"
	CommandHeartbeatRequest       = "HeartbeatRequest"
	CommandJoinChannel            = "JoinChannel"
	CommandLeaveChannel           = "LeaveChannel"
	CommandCreateChannel          = "CreateChannel"
	CommandDeleteChannel          = "DeleteChannel"
	CommandListChannels           = "ListChannels"
	CommandListChannelSubscribers = "ListChannelSubscribers"
	CommandListClients            = "ListClients"
	CommandIsClientConnected      = "IsClientConnected"
)

// Message is the envelope every frame carries, client to server and back.
type Message struct {
	MessageID     string `json:"MessageId,omitempty"`
	SenderGUID    string `json:"SenderGuid,omitempty"`
	RecipientGUID string `json:"RecipientGuid,omitempty"`
	ChannelGUID   string `json:"ChannelGuid,omitempty"`

	Command string `json:"Command,omitempty"`

	CreatedUTC time.Time `json:"CreatedUTC,omitempty"`

	// Credentials travel only on login and must never be relayed.
	Email    string `json:"Email,omitempty"`
	Password string `json:"Password,omitempty"`

	SyncRequest  bool `json:"SyncRequest,omitempty"`
	SyncResponse bool `json:"SyncResponse,omitempty"`

	Success bool `json:"Success"`

	Data []byte `json:"Data,omitempty"`
}

// Is reports whether the message carries the named command.
func (m *Message) Is(command string) bool {
	return m.Command != "" && strings.EqualFold(m.Command, command)
}

// Valid reports whether the envelope is routable: either a command, or a
// payload with exactly one destination and a sender (server origin excepted).
func (m *Message) Valid() bool {
	if m == nil {
		return false
	}
	if m.SyncRequest && m.SyncResponse {
		return false
	}
	if m.Command != "" {
		return true
	}
	hasRecipient := m.RecipientGUID != ""
	hasChannel := m.ChannelGUID != ""
	if hasRecipient == hasChannel {
		return false
	}
	return m.SenderGUID != ""
}

// Redacted returns a copy safe to relay: credentials stripped.
func (m *Message) Redacted() *Message {
	out := *m
	out.Email = ""
	out.Password = ""
	return &out
}

// Reply builds a server-origin reply to m obeying the reply contract:
// credentials scrubbed, sender set to the server, recipient set to the
// original sender, the request's SyncRequest mirrored into SyncResponse,
// and a fresh timestamp.
func (m *Message) Reply(success bool, data []byte) *Message {
	return &Message{
		MessageID:     m.MessageID,
		SenderGUID:    ServerGUID,
		RecipientGUID: m.SenderGUID,
		Command:       m.Command,
		CreatedUTC:    time.Now().UTC(),
		SyncResponse:  m.SyncRequest,
		Success:       success,
		Data:          data,
	}
}

// TextReply is Reply with a human-readable string payload.
func (m *Message) TextReply(success bool, text string) *Message {
	return m.Reply(success, []byte(text))
}
