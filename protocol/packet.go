package protocol

// Packet tags for the Minecraft 1.5.2 protocol subset relayed to Eaglercraft
// clients. Tags outside this set are carried opaquely as Unknown.
const (
	TagKeepAlive  byte = 0x00
	TagLogin      byte = 0x01
	TagHandshake  byte = 0x02
	TagChat       byte = 0x03
	TagDisconnect byte = 0xFF
)

// Packet is the closed union of frames this server understands. Decode
// produces exactly one variant per frame; downstream code switches on the
// concrete type instead of poking at loose fields.
type Packet interface {
	packetTag() byte
}

// KeepAlive is the liveness ping exchanged with every connected client.
type KeepAlive struct {
	ID int32
}

// Login is the client's login request.
type Login struct {
	ProtocolVersion int32
	Username        string
}

// LoginResponse is the server's login acceptance. It shares tag 0x01 with
// Login; the wire layouts differ and Decode tells them apart by length.
type LoginResponse struct {
	EntityID    int32
	Seed        int64
	GameMode    int32
	Dimension   int8
	Difficulty  int8
	WorldHeight int8
	MaxPlayers  int8
}

// Handshake carries the client username inbound and the placeholder
// connection hash in the server's acknowledgment.
type Handshake struct {
	Value string
}

// Chat is a chat line in either direction.
type Chat struct {
	Message string
}

// Disconnect tells the peer the connection is being closed and why.
type Disconnect struct {
	Reason string
}

// Unknown preserves a well-formed frame whose tag this server does not
// decode, keeping forward compatibility with unimplemented packet types.
type Unknown struct {
	Tag byte
	Raw []byte
}

func (KeepAlive) packetTag() byte { return TagKeepAlive }

func (Login) packetTag() byte { return TagLogin }

func (LoginResponse) packetTag() byte { return TagLogin }

func (Handshake) packetTag() byte { return TagHandshake }

func (Chat) packetTag() byte { return TagChat }

func (Disconnect) packetTag() byte { return TagDisconnect }

func (p Unknown) packetTag() byte { return p.Tag }
