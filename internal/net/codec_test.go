package net

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LineDuel/internal/state"
)

func TestCodecs(t *testing.T) {
	draw := Envelope{
		T:    MsgDraw,
		From: "site-a",
		Seq:  7,
		Draw: &Draw{Prev: state.Point{X: 1.5, Y: 2}, Curr: state.Point{X: 30, Y: 40.25}},
	}
	for _, name := range []string{"json", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			c, err := CodecByName(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())

			b, err := c.Encode(draw)
			require.NoError(t, err)
			got, err := c.Decode(b)
			require.NoError(t, err)
			assert.Equal(t, draw, got)

			b, err = c.Encode(Envelope{T: MsgLost, From: "site-a", Seq: 8})
			require.NoError(t, err)
			got, err = c.Decode(b)
			require.NoError(t, err)
			assert.Equal(t, MsgLost, got.T)
			assert.Nil(t, got.Draw)
		})
	}
}

func TestJSONWireFormat(t *testing.T) {
	b, err := JSONCodec{}.Encode(Envelope{
		T:    MsgDraw,
		From: "a",
		Seq:  1,
		Draw: &Draw{Prev: state.Point{X: 1, Y: 2}, Curr: state.Point{X: 3, Y: 4}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"draw","from":"a","seq":1,"p":{"prev":{"x":1,"y":2},"curr":{"x":3,"y":4}}}`, string(b))
}

func TestCodecRejectsBadEnvelopes(t *testing.T) {
	c := JSONCodec{}
	_, err := c.Encode(Envelope{T: MsgDraw})
	assert.ErrorIs(t, err, ErrMissingPayload)

	_, err = c.Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyEnvelope)

	_, err = c.Decode([]byte(`{"t":"teleport"}`))
	assert.ErrorIs(t, err, ErrUnknownMessage)

	_, err = c.Decode([]byte(`{"t":`))
	assert.Error(t, err)

	_, err = CodecByName("xml")
	assert.Error(t, err)
}

func TestFrameTypes(t *testing.T) {
	assert.Equal(t, websocket.TextMessage, JSONCodec{}.FrameType())
	assert.Equal(t, websocket.BinaryMessage, MsgpackCodec{}.FrameType())
}
