package udp

import (
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

func TestSendDeliversDatagram(t *testing.T) {
	ln, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	defer ln.Close()

	sender, err := Dial(ln.LocalAddr().String())
	require.NoError(t, err)
	defer sender.Close()

	require.NoError(t, sender.Send(Message{Type: "set_param_rt", Params: map[string]any{"value": 0.5}}))

	buf := make([]byte, 2048)
	require.NoError(t, ln.SetReadDeadline(time.Now().Add(time.Second)))
	n, _, err := ln.ReadFromUDP(buf)
	require.NoError(t, err)

	var got Message
	require.NoError(t, json.Unmarshal(buf[:n], &got))
	assert.Equal(t, "set_param_rt", got.Type)
}

func TestSendRejectsOversizedPayload(t *testing.T) {
	ln, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	defer ln.Close()

	sender, err := Dial(ln.LocalAddr().String())
	require.NoError(t, err)
	defer sender.Close()

	huge := strings.Repeat("x", maxDatagramBytes)
	err = sender.Send(Message{Type: "set_param_rt", Params: map[string]any{"blob": huge}})
	require.Error(t, err)
	assert.Equal(t, bridgeerr.InvalidInput, bridgeerr.KindOf(err))
}
