package protocol

// Message type codes, per SPEC_FULL.md §6.
const (
	TypeUserQuit          = 0x00
	TypeServerStatus      = 0x01
	TypeClientQuit        = 0x02
	TypeUserLogin         = 0x03
	TypePlayerInfo        = 0x04
	TypeS2CAck            = 0x05
	TypeC2SAck            = 0x06
	TypeGlobalChat        = 0x07
	TypeGameChat          = 0x08
	TypeKickUser          = 0x09
	TypeCreateGame        = 0x0A
	TypeQuitGame          = 0x0B
	TypeJoinGame          = 0x0C
	TypeGamePlayerInfo    = 0x0D
	TypeUpdateGameStatus  = 0x0E
	TypeKickGame          = 0x0F
	TypeCloseGame         = 0x10
	TypeStartGame         = 0x11
	TypeGameData          = 0x12
	TypeGameCache         = 0x13
	TypeDropGame          = 0x14
	TypeReadyToPlay       = 0x15
)

// Connection types double as per-frame delay (in units), per §3.
const (
	MinConnType = 1
	MaxConnType = 6
)

// UserLogin is the C→S login request (0x03).
type UserLogin struct {
	Name       string
	Emulator   string
	ConnType   byte
}

func ParseUserLogin(payload []byte) (UserLogin, error) {
	r := NewReader(payload)
	if _, err := r.ReadString(); err != nil { // leading empty-string prefix
		return UserLogin{}, err
	}
	name, err := r.ReadString()
	if err != nil {
		return UserLogin{}, err
	}
	emu, err := r.ReadString()
	if err != nil {
		return UserLogin{}, err
	}
	ct, err := r.ReadByte()
	if err != nil {
		return UserLogin{}, err
	}
	return UserLogin{Name: name, Emulator: emu, ConnType: ct}, nil
}

func BuildUserLogin(l UserLogin) []byte {
	w := NewWriter()
	w.WriteString("")
	w.WriteString(l.Name)
	w.WriteString(l.Emulator)
	w.WriteByte(l.ConnType)
	return w.Bytes()
}

// BuildS2CAck builds the server handshake ack (0x05).
func BuildS2CAck() []byte {
	w := NewWriter()
	w.WriteString("")
	w.WriteByte(0)
	w.WriteUint32(0)
	w.WriteUint32(1)
	w.WriteUint32(2)
	w.WriteUint32(3)
	return w.Bytes()
}

// Chat is the shared shape of GlobalChat (0x07) and GameChat (0x08).
type Chat struct {
	Name    string
	Message string
}

func ParseChat(payload []byte) (Chat, error) {
	r := NewReader(payload)
	if _, err := r.ReadString(); err != nil {
		return Chat{}, err
	}
	name, err := r.ReadString()
	if err != nil {
		return Chat{}, err
	}
	msg, err := r.ReadString()
	if err != nil {
		return Chat{}, err
	}
	return Chat{Name: name, Message: msg}, nil
}

func BuildChat(c Chat) []byte {
	w := NewWriter()
	w.WriteString("")
	w.WriteString(c.Name)
	w.WriteString(c.Message)
	return w.Bytes()
}

// CreateGame is the C→S request (and S→C echo with GameID filled in).
type CreateGame struct {
	ClientVersion string
	GameName      string
	Emulator      string
	GameID        uint32
}

func ParseCreateGame(payload []byte) (CreateGame, error) {
	r := NewReader(payload)
	if _, err := r.ReadString(); err != nil {
		return CreateGame{}, err
	}
	gameName, err := r.ReadString()
	if err != nil {
		return CreateGame{}, err
	}
	emulator, err := r.ReadString()
	if err != nil {
		return CreateGame{}, err
	}
	gameID, err := r.ReadUint32()
	if err != nil {
		return CreateGame{}, err
	}
	return CreateGame{GameName: gameName, Emulator: emulator, GameID: gameID}, nil
}

func BuildCreateGame(c CreateGame) []byte {
	w := NewWriter()
	w.WriteString("")
	w.WriteString(c.GameName)
	w.WriteString(c.Emulator)
	w.WriteUint32(c.GameID)
	return w.Bytes()
}

// QuitGame (0x0B).
type QuitGame struct {
	Name   string
	UserID uint16
}

func ParseQuitGame(payload []byte) (QuitGame, error) {
	r := NewReader(payload)
	name, err := r.ReadString()
	if err != nil {
		return QuitGame{}, err
	}
	uid, err := r.ReadUint16()
	if err != nil {
		return QuitGame{}, err
	}
	return QuitGame{Name: name, UserID: uid}, nil
}

func BuildQuitGame(q QuitGame) []byte {
	w := NewWriter()
	w.WriteString(q.Name)
	w.WriteUint16(q.UserID)
	return w.Bytes()
}

// JoinGame (0x0C), both directions.
type JoinGame struct {
	GameID   uint32
	Name     string
	Ping     uint32
	UserID   uint16
	ConnType byte
}

func ParseJoinGame(payload []byte) (JoinGame, error) {
	r := NewReader(payload)
	if _, err := r.ReadString(); err != nil {
		return JoinGame{}, err
	}
	gameID, err := r.ReadUint32()
	if err != nil {
		return JoinGame{}, err
	}
	name, err := r.ReadString()
	if err != nil {
		return JoinGame{}, err
	}
	ping, err := r.ReadUint32()
	if err != nil {
		return JoinGame{}, err
	}
	uid, err := r.ReadUint16()
	if err != nil {
		return JoinGame{}, err
	}
	ct, err := r.ReadByte()
	if err != nil {
		return JoinGame{}, err
	}
	return JoinGame{GameID: gameID, Name: name, Ping: ping, UserID: uid, ConnType: ct}, nil
}

func BuildJoinGame(j JoinGame) []byte {
	w := NewWriter()
	w.WriteString("")
	w.WriteUint32(j.GameID)
	w.WriteString(j.Name)
	w.WriteUint32(j.Ping)
	w.WriteUint16(j.UserID)
	w.WriteByte(j.ConnType)
	return w.Bytes()
}

// UpdateGameStatus (0x0E), S→C only.
type UpdateGameStatus struct {
	GameID uint32
	Status byte
	Num    byte
	Max    byte
}

func BuildUpdateGameStatus(u UpdateGameStatus) []byte {
	w := NewWriter()
	w.WriteString("")
	w.WriteUint32(u.GameID)
	w.WriteByte(u.Status)
	w.WriteByte(u.Num)
	w.WriteByte(u.Max)
	return w.Bytes()
}

// CloseGame (0x10), S→C only.
type CloseGame struct {
	GameID uint32
}

func BuildCloseGame(c CloseGame) []byte {
	w := NewWriter()
	w.WriteString("")
	w.WriteUint32(c.GameID)
	return w.Bytes()
}

// StartGame (0x11). Clients send an empty trigger; the server replies
// per-player with frame delay / player number / total players.
type StartGameNotify struct {
	FrameDelay uint16
	PlayerNum  byte
	Total      byte
}

func BuildStartGameNotify(s StartGameNotify) []byte {
	w := NewWriter()
	w.WriteString("")
	w.WriteUint16(s.FrameDelay)
	w.WriteByte(s.PlayerNum)
	w.WriteByte(s.Total)
	return w.Bytes()
}

// GameData (0x12), both directions.
type GameData struct {
	Data []byte
}

func ParseGameData(payload []byte) (GameData, error) {
	r := NewReader(payload)
	if _, err := r.ReadString(); err != nil {
		return GameData{}, err
	}
	length, err := r.ReadUint16()
	if err != nil {
		return GameData{}, err
	}
	data, err := r.ReadBytes(int(length))
	if err != nil {
		return GameData{}, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return GameData{Data: out}, nil
}

func BuildGameData(g GameData) []byte {
	w := NewWriter()
	w.WriteString("")
	w.WriteUint16(uint16(len(g.Data)))
	w.WriteBytes(g.Data)
	return w.Bytes()
}

// GameCache (0x13), both directions.
type GameCache struct {
	Position byte
}

func ParseGameCache(payload []byte) (GameCache, error) {
	r := NewReader(payload)
	if _, err := r.ReadString(); err != nil {
		return GameCache{}, err
	}
	pos, err := r.ReadByte()
	if err != nil {
		return GameCache{}, err
	}
	return GameCache{Position: pos}, nil
}

func BuildGameCache(g GameCache) []byte {
	w := NewWriter()
	w.WriteString("")
	w.WriteByte(g.Position)
	return w.Bytes()
}

// DropGame (0x14), both directions.
type DropGame struct {
	Name      string
	PlayerNum byte
}

func ParseDropGame(payload []byte) (DropGame, error) {
	r := NewReader(payload)
	name, err := r.ReadString()
	if err != nil {
		return DropGame{}, err
	}
	num, err := r.ReadByte()
	if err != nil {
		return DropGame{}, err
	}
	return DropGame{Name: name, PlayerNum: num}, nil
}

func BuildDropGame(d DropGame) []byte {
	w := NewWriter()
	w.WriteString(d.Name)
	w.WriteByte(d.PlayerNum)
	return w.Bytes()
}

// ReadyToPlay (0x15) carries no payload in either direction.
func BuildReadyToPlay() []byte { return nil }

// TruncateName clips a login or game name to the maximum the wire format
// allows, preserving raw bytes (no charset-aware truncation).
func TruncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	return name[:max]
}

const (
	MaxLoginNameBytes = 31
	MaxGameNameBytes  = 127
)
