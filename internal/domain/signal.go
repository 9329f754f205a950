package domain

import "encoding/json"

// SignalKind discriminates negotiation payloads at the boundary. The payload
// itself stays opaque and is forwarded verbatim.
type SignalKind string

const (
	SignalOffer       SignalKind = "offer"
	SignalAnswer      SignalKind = "answer"
	SignalCandidate   SignalKind = "candidate"
	SignalRenegotiate SignalKind = "renegotiate"
)

func (k SignalKind) Valid() bool {
	switch k {
	case SignalOffer, SignalAnswer, SignalCandidate, SignalRenegotiate:
		return true
	}
	return false
}

// SignalEnvelope is transient: it exists only for the duration of relay and
// is never persisted.
type SignalEnvelope struct {
	From       Participant     `json:"from"`
	TargetUser UserID          `json:"targetUserId"`
	Kind       SignalKind      `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
}
