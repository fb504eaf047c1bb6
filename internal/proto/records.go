package proto

import "time"

// ClientInfo is the listing record for a connected client. It carries no
// credentials and no transport fields.
type ClientInfo struct {
	ClientGUID string    `json:"ClientGuid"`
	Email      string    `json:"Email,omitempty"`
	SourceIP   string    `json:"SourceIp"`
	SourcePort int       `json:"SourcePort"`
	CreatedUTC time.Time `json:"CreatedUTC"`
	UpdatedUTC time.Time `json:"UpdatedUTC"`
}

// ChannelInfo is the listing record for a channel.
type ChannelInfo struct {
	ChannelGUID string    `json:"ChannelGuid"`
	ChannelName string    `json:"ChannelName"`
	OwnerGUID   string    `json:"OwnerGuid"`
	Private     bool      `json:"Private"`
	Subscribers int       `json:"Subscribers"`
	CreatedUTC  time.Time `json:"CreatedUTC"`
	UpdatedUTC  time.Time `json:"UpdatedUTC"`
}

// ChannelRequest is the payload of a CreateChannel command. A bare
// string payload is also accepted as the channel name.
type ChannelRequest struct {
	ChannelName string `json:"ChannelName"`
	Private     bool   `json:"Private,omitempty"`
}
