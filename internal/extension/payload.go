package extension

// Response is the value resolved into a caller's reply channel. NotFound is
// set by the command bus itself when no extension matched the command.
type Response struct {
	Body     any  `json:"response"`
	NotFound bool `json:"-"`
}

// Payload is one control-plane command in flight on the command bus. ReplyTo
// is a single-slot channel owned exclusively by the submitting caller; the
// contract is exactly one write per submitted payload.
type Payload struct {
	Command  string
	Platform string
	Data     map[string]any
	ReplyTo  chan Response
}

// NewPayload builds a payload with a fresh single-slot reply channel.
func NewPayload(command, platform string, data map[string]any) Payload {
	return Payload{
		Command:  command,
		Platform: platform,
		Data:     data,
		ReplyTo:  make(chan Response, 1),
	}
}

// Reply resolves the payload's reply channel. The slot holds one value;
// further writes are dropped so a misbehaving double-writer cannot wedge the
// dispatch loop.
func (p Payload) Reply(r Response) {
	select {
	case p.ReplyTo <- r:
	default:
	}
}
