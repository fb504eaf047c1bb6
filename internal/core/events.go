package core

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wirehub-server/internal/proto"
	"github.com/vovakirdan/wirehub-server/internal/utils"
)

// Publisher derives server-origin notifications and fans them out. Each
// recipient gets an independently scheduled send: a dead peer never
// blocks or fails delivery to anyone else.
type Publisher struct {
	reg *Registry
	log *zerolog.Logger

	serverJoinEvents bool
	channelEvents    bool
}

// NewPublisher builds a publisher honoring the event enable flags.
func NewPublisher(reg *Registry, logger *zerolog.Logger, serverJoinEvents, channelEvents bool) *Publisher {
	return &Publisher{
		reg:              reg,
		log:              logger,
		serverJoinEvents: serverJoinEvents,
		channelEvents:    channelEvents,
	}
}

// ServerJoin notifies every other logged-in client that subject arrived.
func (p *Publisher) ServerJoin(subject *Client) {
	if !p.serverJoinEvents {
		return
	}
	p.toAllExcept(subject.GUID(), proto.EventClientJoinedServer, subject.GUID())
}

// ServerLeave notifies every other logged-in client that the guid left.
func (p *Publisher) ServerLeave(subjectGUID string) {
	if !p.serverJoinEvents {
		return
	}
	p.toAllExcept(subjectGUID, proto.EventClientLeftServer, subjectGUID)
}

// ChannelJoin notifies the other subscribers of ch that subject joined.
func (p *Publisher) ChannelJoin(channelGUID string, subject *Client) {
	if !p.channelEvents {
		return
	}
	p.toChannelExcept(channelGUID, subject.GUID(), proto.EventClientJoinedChannel, subject.GUID())
}

// ChannelLeave notifies the other subscribers of ch that subject left.
func (p *Publisher) ChannelLeave(channelGUID string, subjectGUID string) {
	if !p.channelEvents {
		return
	}
	p.toChannelExcept(channelGUID, subjectGUID, proto.EventClientLeftChannel, subjectGUID)
}

// ChannelDeleted tells every surviving subscriber the owner deleted the
// channel. This is a correctness notification and ignores the channel
// event flag. It satisfies the registry's ChannelNotifier contract.
func (p *Publisher) ChannelDeleted(ch *Channel, subscribers []*Client) {
	for _, sub := range subscribers {
		p.schedule(sub, proto.EventChannelDeleted, ch.GUID)
	}
}

func (p *Publisher) toAllExcept(exceptGUID, eventType, subject string) {
	for _, c := range p.reg.GetAllClients() {
		guid, _, loggedIn := c.Identity()
		if !loggedIn || guid == exceptGUID {
			continue
		}
		p.schedule(c, eventType, subject)
	}
}

func (p *Publisher) toChannelExcept(channelGUID, exceptGUID, eventType, subject string) {
	subs, ok := p.reg.GetChannelSubscribers(channelGUID)
	if !ok {
		return
	}
	for _, sub := range subs {
		if sub.GUID() == exceptGUID {
			continue
		}
		p.schedule(sub, eventType, subject)
	}
}

func (p *Publisher) schedule(recipient *Client, eventType, subject string) {
	data, err := proto.Event{EventType: eventType, Data: subject}.Marshal()
	if err != nil {
		p.log.Error().Err(err).Str("event", eventType).Msg("encode event")
		return
	}
	msg := &proto.Message{
		MessageID:     utils.NewID(),
		SenderGUID:    proto.ServerGUID,
		RecipientGUID: recipient.GUID(),
		CreatedUTC:    time.Now().UTC(),
		Success:       true,
		Data:          data,
	}
	go func() {
		if err := recipient.Send(msg); err != nil {
			p.log.Debug().Err(err).
				Str("event", eventType).
				Str("recipient", recipient.GUID()).
				Msg("event delivery failed")
		}
	}()
}
