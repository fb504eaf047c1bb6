package proto

import (
	"testing"
	"time"
)

func TestValidRequiresCommandOrDestination(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		want bool
	}{
		{"command only", Message{Command: CommandEcho}, true},
		{"recipient with sender", Message{SenderGUID: "a", RecipientGUID: "b"}, true},
		{"channel with sender", Message{SenderGUID: "a", ChannelGUID: "ch"}, true},
		{"no destination", Message{SenderGUID: "a"}, false},
		{"both destinations", Message{SenderGUID: "a", RecipientGUID: "b", ChannelGUID: "ch"}, false},
		{"destination without sender", Message{RecipientGUID: "b"}, false},
		{"both sync flags", Message{Command: CommandEcho, SyncRequest: true, SyncResponse: true}, false},
	}

	for _, tc := range cases {
		if got := tc.msg.Valid(); got != tc.want {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRedactedStripsCredentials(t *testing.T) {
	m := &Message{
		SenderGUID: "a",
		Email:      "a@x",
		Password:   "secret",
		Data:       []byte("payload"),
	}

	r := m.Redacted()
	if r.Email != "" || r.Password != "" {
		t.Fatalf("credentials survived redaction: %+v", r)
	}
	if string(r.Data) != "payload" || r.SenderGUID != "a" {
		t.Fatalf("redaction altered unrelated fields: %+v", r)
	}
	if m.Email != "a@x" {
		t.Fatal("redaction mutated the original message")
	}
}

func TestReplyContract(t *testing.T) {
	req := &Message{
		MessageID:   "m1",
		SenderGUID:  "c1",
		Command:     CommandLogin,
		Email:       "c1@x",
		Password:    "secret",
		SyncRequest: true,
	}

	reply := req.Reply(true, []byte("ok"))

	if reply.Email != "" || reply.Password != "" {
		t.Fatalf("reply carries credentials: %+v", reply)
	}
	if reply.SenderGUID != ServerGUID {
		t.Fatalf("reply sender = %q, want server guid", reply.SenderGUID)
	}
	if reply.RecipientGUID != "c1" {
		t.Fatalf("reply recipient = %q, want original sender", reply.RecipientGUID)
	}
	if !reply.SyncResponse || reply.SyncRequest {
		t.Fatalf("sync flags not mirrored: %+v", reply)
	}
	if reply.CreatedUTC.IsZero() || time.Since(reply.CreatedUTC) > time.Minute {
		t.Fatalf("reply timestamp not stamped: %v", reply.CreatedUTC)
	}
	if reply.MessageID != "m1" || !reply.Success {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestReplyToAsyncRequestIsNotSync(t *testing.T) {
	req := &Message{MessageID: "m2", SenderGUID: "c1", Command: CommandEcho}
	reply := req.Reply(true, nil)
	if reply.SyncResponse || reply.SyncRequest {
		t.Fatalf("async request produced sync reply: %+v", reply)
	}
}

func TestCommandMatchIsCaseInsensitive(t *testing.T) {
	m := &Message{Command: "lOgIn"}
	if !m.Is(CommandLogin) {
		t.Fatal("expected case-insensitive command match")
	}
	if m.Is(CommandEcho) {
		t.Fatal("matched the wrong command")
	}
}

func TestEventRoundTrip(t *testing.T) {
	data, err := Event{EventType: EventClientJoinedChannel, Data: "c2"}.Marshal()
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	ev, ok := ParseEvent(data)
	if !ok {
		t.Fatal("ParseEvent rejected a valid event")
	}
	if ev.EventType != EventClientJoinedChannel || ev.Data != "c2" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestParseEventRejectsPlainPayload(t *testing.T) {
	if _, ok := ParseEvent([]byte("just some text")); ok {
		t.Fatal("plain payload parsed as event")
	}
	if _, ok := ParseEvent([]byte(`{"Foo":"bar"}`)); ok {
		t.Fatal("object without EventType parsed as event")
	}
}
