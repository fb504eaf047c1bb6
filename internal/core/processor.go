package core

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wirehub-server/internal/auth"
	"github.com/vovakirdan/wirehub-server/internal/proto"
	"github.com/vovakirdan/wirehub-server/internal/utils"
)

// Processor dispatches decoded messages: administrative commands,
// directed relays and channel fan-out.
type Processor struct {
	reg    *Registry
	events *Publisher
	auth   *auth.Service
	hooks  Hooks
	log    *zerolog.Logger

	acks bool
}

// NewProcessor wires the dispatch table.
func NewProcessor(reg *Registry, events *Publisher, authSvc *auth.Service, hooks Hooks, logger *zerolog.Logger, acks bool) *Processor {
	return &Processor{
		reg:    reg,
		events: events,
		auth:   authSvc,
		hooks:  hooks,
		log:    logger,
		acks:   acks,
	}
}

// Process handles one gated inbound message from c.
func (p *Processor) Process(c *Client, m *proto.Message) {
	// A sync response may match a request this server issued to c. When
	// nothing was registered it falls through to normal routing.
	if m.SyncResponse && c.Pending().Deliver(m) {
		return
	}

	if m.Command != "" {
		p.dispatch(c, m)
		return
	}

	if !m.Valid() {
		p.reply(c, errorReply(m, ErrCodeBadMessage, "message has no routable destination"))
		return
	}

	switch {
	case m.RecipientGUID != "":
		p.sendPrivate(c, m)
	case m.ChannelGUID != "":
		p.sendChannel(c, m)
	default:
		p.reply(c, errorReply(m, ErrCodeRecipientNotFound, "no recipient or channel specified"))
	}
}

func (p *Processor) dispatch(c *Client, m *proto.Message) {
	// Commands compare case-insensitively.
	switch strings.ToLower(m.Command) {
	case "echo":
		p.handleEcho(c, m)
	case "login":
		p.handleLogin(c, m)
	case "heartbeatrequest":
		// Heartbeats are consumed silently in both directions.
	case "joinchannel":
		p.handleJoinChannel(c, m)
	case "leavechannel":
		p.handleLeaveChannel(c, m)
	case "createchannel":
		p.handleCreateChannel(c, m)
	case "deletechannel":
		p.handleDeleteChannel(c, m)
	case "listchannels":
		p.handleListChannels(c, m)
	case "listchannelsubscribers":
		p.handleListChannelSubscribers(c, m)
	case "listclients":
		p.handleListClients(c, m)
	case "isclientconnected":
		p.handleIsClientConnected(c, m)
	default:
		p.reply(c, errorReply(m, ErrCodeUnknownCommand, "unknown command "+m.Command))
	}
}

// handleEcho returns the request payload under the uniform reply
// contract: server-origin sender, original sender as recipient.
func (p *Processor) handleEcho(c *Client, m *proto.Message) {
	p.reply(c, m.Reply(true, m.Data))
}

func (p *Processor) handleLogin(c *Client, m *proto.Message) {
	guid := m.SenderGUID
	if guid == "" || guid == proto.ServerGUID {
		p.reply(c, errorReply(m, ErrCodeLoginFailed, "login failed: missing sender guid"))
		return
	}

	if err := p.auth.Authenticate(context.Background(), m.Email, m.Password); err != nil {
		p.log.Info().Str("email", m.Email).Str("addr", c.Addr()).Err(err).Msg("login rejected")
		p.reply(c, errorReply(m, ErrCodeLoginFailed, "login failed: "+err.Error()))
		return
	}

	superseded := p.reg.Login(c, guid, m.Email)

	// Reply before the join event so the new client never observes its
	// own arrival notification ahead of the login confirmation.
	p.reply(c, m.TextReply(true, "login succeeded"))

	if superseded != nil {
		superseded.Peer().Close()
		p.log.Info().Str("guid", guid).Msg("superseded older connection for reconnecting client")
	}

	p.log.Info().Str("guid", guid).Str("email", m.Email).Str("addr", c.Addr()).Msg("client logged in")
	p.events.ServerJoin(c)
	p.hooks.OnClientLogin(c)
}

func (p *Processor) handleJoinChannel(c *Client, m *proto.Message) {
	ch, ok := p.reg.GetChannelByGUID(m.ChannelGUID)
	if !ok {
		p.reply(c, errorReply(m, ErrCodeChannelNotFound, "channel not found"))
		return
	}

	added, err := p.reg.AddChannelSubscriber(ch.GUID, c)
	if err != nil {
		p.reply(c, errorReply(m, ErrCodeChannelNotFound, "channel not found"))
		return
	}

	p.reply(c, m.TextReply(true, "joined channel "+ch.Name))
	if added {
		p.events.ChannelJoin(ch.GUID, c)
	}
}

func (p *Processor) handleLeaveChannel(c *Client, m *proto.Message) {
	ch, ok := p.reg.GetChannelByGUID(m.ChannelGUID)
	if !ok {
		p.reply(c, errorReply(m, ErrCodeChannelNotFound, "channel not found"))
		return
	}

	// The owner leaving deletes the channel for everyone.
	if ch.OwnerGUID == c.GUID() {
		p.reply(c, m.TextReply(true, "deleted channel "+ch.Name))
		p.reg.RemoveChannel(ch.GUID)
		return
	}

	removed, err := p.reg.RemoveChannelSubscriber(ch.GUID, c.GUID())
	if err != nil || !removed {
		p.reply(c, errorReply(m, ErrCodeLeaveFailed, "not a channel member"))
		return
	}
	p.reply(c, m.TextReply(true, "left channel "+ch.Name))
	p.events.ChannelLeave(ch.GUID, c.GUID())
}

func (p *Processor) handleCreateChannel(c *Client, m *proto.Message) {
	req := parseChannelRequest(m.Data)
	if req.ChannelName == "" {
		p.reply(c, errorReply(m, ErrCodeBadMessage, "channel name required"))
		return
	}

	if _, exists := p.reg.GetChannelByName(req.ChannelName); exists {
		p.reply(c, errorReply(m, ErrCodeChannelExists, "channel already exists"))
		return
	}

	guid := m.ChannelGUID
	if guid == "" {
		guid = utils.NewID()
	}
	ch := NewChannel(guid, req.ChannelName, c.GUID(), req.Private)
	if !p.reg.AddChannel(c, ch) {
		p.reply(c, errorReply(m, ErrCodeChannelExists, "channel already exists"))
		return
	}

	p.log.Info().Str("channel", ch.GUID).Str("name", ch.Name).Str("owner", c.GUID()).Msg("channel created")

	out := m.Reply(true, []byte(ch.GUID))
	out.ChannelGUID = ch.GUID
	p.reply(c, out)
}

func (p *Processor) handleDeleteChannel(c *Client, m *proto.Message) {
	ch, ok := p.reg.GetChannelByGUID(m.ChannelGUID)
	if !ok {
		p.reply(c, errorReply(m, ErrCodeChannelNotFound, "channel not found"))
		return
	}
	if ch.OwnerGUID != c.GUID() {
		p.reply(c, errorReply(m, ErrCodeDeleteFailed, "only the channel owner can delete it"))
		return
	}

	p.reply(c, m.TextReply(true, "deleted channel "+ch.Name))
	p.reg.RemoveChannel(ch.GUID)
}

// handleListChannels lists every channel except private ones the
// requester does not own.
func (p *Processor) handleListChannels(c *Client, m *proto.Message) {
	requester := c.GUID()
	all := p.reg.GetAllChannels()
	visible := make([]proto.ChannelInfo, 0, len(all))
	for _, info := range all {
		if info.Private && info.OwnerGUID != requester {
			continue
		}
		visible = append(visible, info)
	}
	p.replyList(c, m, visible)
}

func (p *Processor) handleListChannelSubscribers(c *Client, m *proto.Message) {
	subs, ok := p.reg.GetChannelSubscribers(m.ChannelGUID)
	if !ok {
		p.reply(c, errorReply(m, ErrCodeChannelNotFound, "channel not found"))
		return
	}
	infos := make([]proto.ClientInfo, 0, len(subs))
	for _, sub := range subs {
		infos = append(infos, sub.Info())
	}
	p.replyList(c, m, infos)
}

func (p *Processor) handleListClients(c *Client, m *proto.Message) {
	clients := p.reg.GetAllClients()
	infos := make([]proto.ClientInfo, 0, len(clients))
	for _, cl := range clients {
		if !cl.LoggedIn() {
			continue
		}
		infos = append(infos, cl.Info())
	}
	p.replyList(c, m, infos)
}

func (p *Processor) handleIsClientConnected(c *Client, m *proto.Message) {
	guid := strings.TrimSpace(string(m.Data))
	connected := p.reg.IsClientConnected(guid)
	data, err := json.Marshal(connected)
	if err != nil {
		p.reply(c, errorReply(m, ErrCodeBadMessage, "encode response"))
		return
	}
	p.reply(c, m.Reply(true, data))
}

// sendPrivate relays a directed message. The write happens on the
// worker goroutine so an acknowledgement can report the real outcome.
func (p *Processor) sendPrivate(c *Client, m *proto.Message) {
	if m.RecipientGUID == proto.ServerGUID {
		// Addressed to the broker itself; the embedder already saw it
		// through OnMessageReceived. Nothing to relay.
		return
	}

	recipient, ok := p.reg.GetClientByGUID(m.RecipientGUID)
	if !ok {
		p.reply(c, errorReply(m, ErrCodeRecipientNotFound, "recipient not found"))
		return
	}

	err := recipient.Send(m.Redacted())

	// Sync traffic correlates by message id; an acknowledgement here
	// would race the real response.
	if m.SyncRequest || m.SyncResponse || !p.acks {
		return
	}
	if err != nil {
		p.reply(c, errorReply(m, ErrCodeSendFailed, "delivery failed"))
		return
	}
	p.reply(c, m.TextReply(true, "message sent"))
}

// sendChannel fans a message out to every current subscriber, one
// independent delivery per subscriber.
func (p *Processor) sendChannel(c *Client, m *proto.Message) {
	ch, ok := p.reg.GetChannelByGUID(m.ChannelGUID)
	if !ok {
		p.reply(c, errorReply(m, ErrCodeRecipientNotFound, "recipient not found"))
		return
	}

	sender := c.GUID()
	if !p.reg.IsChannelSubscriber(ch.GUID, sender) {
		p.reply(c, errorReply(m, ErrCodeNotChannelMember, "not a channel member"))
		return
	}

	subs, _ := p.reg.GetChannelSubscribers(ch.GUID)
	relay := m.Redacted()
	for _, sub := range subs {
		if sub.GUID() == sender {
			continue
		}
		recipient := sub
		go func() {
			if err := recipient.Send(relay); err != nil {
				p.log.Debug().Err(err).
					Str("channel", ch.GUID).
					Str("recipient", recipient.GUID()).
					Msg("channel delivery failed")
			}
		}()
	}

	if p.acks {
		p.reply(c, m.TextReply(true, "message sent"))
	}
}

func (p *Processor) replyList(c *Client, m *proto.Message, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.reply(c, errorReply(m, ErrCodeBadMessage, "encode listing"))
		return
	}
	p.reply(c, m.Reply(true, data))
}

func (p *Processor) reply(c *Client, out *proto.Message) {
	if err := c.Send(out); err != nil {
		p.log.Debug().Err(err).Str("addr", c.Addr()).Msg("reply delivery failed")
	}
}

func parseChannelRequest(data []byte) proto.ChannelRequest {
	var req proto.ChannelRequest
	if err := json.Unmarshal(data, &req); err == nil && req.ChannelName != "" {
		return req
	}
	return proto.ChannelRequest{ChannelName: strings.TrimSpace(string(data))}
}
