package net

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"LineDuel/internal/state"
)

const (
	MsgDraw  = "draw"
	MsgReset = "reset"
	MsgLost  = "lost"
)

var (
	ErrEmptyEnvelope  = errors.New("empty envelope")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrMissingPayload = errors.New("draw without payload")
)

// Envelope is one event on the wire. From and Seq let the receiver drop
// duplicates after a reconnect.
type Envelope struct {
	T    string `json:"t" msgpack:"t"`
	From string `json:"from" msgpack:"from"`
	Seq  uint64 `json:"seq" msgpack:"seq"`
	Draw *Draw  `json:"p,omitempty" msgpack:"p,omitempty"`
}

type Draw struct {
	Prev state.Point `json:"prev" msgpack:"prev"`
	Curr state.Point `json:"curr" msgpack:"curr"`
}

func (e Envelope) validate() error {
	switch e.T {
	case MsgDraw:
		if e.Draw == nil {
			return ErrMissingPayload
		}
	case MsgReset, MsgLost:
	case "":
		return ErrEmptyEnvelope
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, e.T)
	}
	return nil
}

// Codec turns envelopes into websocket frames and back.
type Codec interface {
	Name() string
	FrameType() int
	Encode(Envelope) ([]byte, error)
	Decode([]byte) (Envelope, error)
}

// CodecByName returns the codec registered under name ("json" or "msgpack").
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

type JSONCodec struct{}

func (JSONCodec) Name() string   { return "json" }
func (JSONCodec) FrameType() int { return websocket.TextMessage }

func (JSONCodec) Encode(e Envelope) ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

func (JSONCodec) Decode(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyEnvelope
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode json envelope: %w", err)
	}
	return e, e.validate()
}

type MsgpackCodec struct{}

func (MsgpackCodec) Name() string   { return "msgpack" }
func (MsgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (MsgpackCodec) Encode(e Envelope) ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	return msgpack.Marshal(&e)
}

func (MsgpackCodec) Decode(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyEnvelope
	}
	var e Envelope
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode msgpack envelope: %w", err)
	}
	return e, e.validate()
}
