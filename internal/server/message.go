package server

// Message is the websocket push envelope.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// NewMessage wraps a payload in the push envelope.
func NewMessage(msgType string, payload any) Message {
	return Message{Type: msgType, Payload: payload}
}
