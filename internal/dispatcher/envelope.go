package dispatcher

import (
	"encoding/json"
	"errors"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// Envelope is the uniform response shape every tool call returns,
// success or failure alike.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Details any    `json:"details,omitempty"`
}

func successEnvelope(message string, data any) Envelope {
	return Envelope{Status: "ok", Message: message, Data: data}
}

func errorEnvelope(prefix string, err error) Envelope {
	kind := bridgeerr.KindOf(err)
	msg := err.Error()
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	env := Envelope{Status: "error", Kind: string(kind), Message: msg}

	var be *bridgeerr.Error
	if errors.As(err, &be) && be.Details != nil {
		env.Details = be.Details
	}
	return env
}

// JSON marshals the envelope; callers that need a string (the agent
// protocol's return type) should wrap this.
func (e Envelope) JSON() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
