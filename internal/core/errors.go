package core

import (
	"encoding/json"
	"errors"

	"github.com/vovakirdan/wirehub-server/internal/proto"
)

// Error codes carried to peers inside error reply envelopes.
const (
	ErrCodeLoginRequired     = "login_required"
	ErrCodeLoginFailed       = "login_failed"
	ErrCodeBadMessage        = "bad_message"
	ErrCodeUnknownCommand    = "unknown_command"
	ErrCodeChannelNotFound   = "channel_not_found"
	ErrCodeChannelExists     = "channel_already_exists"
	ErrCodeNotChannelMember  = "not_channel_member"
	ErrCodeDeleteFailed      = "delete_failure"
	ErrCodeLeaveFailed       = "leave_failure"
	ErrCodeRecipientNotFound = "recipient_not_found"
	ErrCodeSendFailed        = "send_failure"
)

var (
	// ErrChannelNotFound is returned on lookups of unknown channel guids.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrClientNotFound is returned on lookups of unknown client guids.
	ErrClientNotFound = errors.New("client not found")
	// ErrSyncTimeout is returned when a sync request outlives its deadline.
	ErrSyncTimeout = errors.New("sync request timed out")
)

// CoreError wraps a code and human-readable message. It is what error
// reply payloads serialize.
type CoreError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

func (e *CoreError) Error() string {
	return e.Message
}

// errorReply builds a failure reply to m carrying a typed error payload.
func errorReply(m *proto.Message, code, text string) *proto.Message {
	data, err := json.Marshal(&CoreError{Code: code, Message: text})
	if err != nil {
		data = []byte(text)
	}
	return m.Reply(false, data)
}
