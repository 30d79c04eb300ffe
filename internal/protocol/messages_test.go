package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectr/roomserver/internal/model"
)

func TestDecodeClientMessage(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"chat","text":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeChat, msg.Type)
	assert.Equal(t, "hi", msg.Text)
}

func TestDecodeClientMessageMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":     "this is not json",
		"missing type": `{"text":"hi"}`,
		"empty":        "",
		"json array":   `[1,2,3]`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeClientMessage([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeClientMessageIgnoresUnknownFields(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"hello","nickname":"a","bogus":true}`))
	require.NoError(t, err)
	assert.Equal(t, TypeHello, msg.Type)
	assert.Equal(t, "a", msg.Nickname)
}

func TestDecodeClientMessageCarriesGameplayPayload(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"submit_placement","placements":[{"x":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, TypeSubmitPlacement, msg.Type)
	assert.JSONEq(t, `[{"x":1}]`, string(msg.Placements))
}

func TestErrorMessageWireShape(t *testing.T) {
	data, err := ErrorMessage(CodeNotHost, "only the host can start the game").Encode()
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "error", wire["type"])
	assert.Equal(t, "not_host", wire["code"])
	// Unpopulated fields must stay off the wire
	assert.NotContains(t, wire, "snapshot")
	assert.NotContains(t, wire, "serverTimeMs")
}

func TestHelloOKCarriesSnapshotAndIdentity(t *testing.T) {
	state := model.NewRoomState("ABC12", 1000)
	msg := HelloOK(model.NewSnapshot(state, 1000), model.SideP1, "tok-1")

	data, err := msg.Encode()
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "hello_ok", wire["type"])
	assert.Equal(t, "p1", wire["yourSide"])
	assert.Equal(t, "tok-1", wire["yourToken"])
	assert.Contains(t, wire, "snapshot")
}

func TestSystemChatUsesSystemSide(t *testing.T) {
	data, err := SystemChat("game starting", 42).Encode()
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "system", wire["fromSide"])
	assert.Equal(t, float64(42), wire["serverTimeMs"])
}
