package protocol

import (
	"testing"
)

func TestEncodeDecodeDatagramRoundTrip(t *testing.T) {
	messages := []Message{
		{Seq: 0, Type: TypeUserLogin, Payload: []byte{0x00, 'b', 'o', 'b', 0x00}},
		{Seq: 1, Type: TypeGameData, Payload: []byte{0x01, 0x02, 0x03}},
	}

	datagram := EncodeDatagram(messages)
	decoded, err := DecodeDatagram(datagram)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != len(messages) {
		t.Fatalf("got %d messages, want %d", len(decoded), len(messages))
	}
	for i := range messages {
		if decoded[i].Seq != messages[i].Seq || decoded[i].Type != messages[i].Type {
			t.Errorf("message %d: got %+v, want %+v", i, decoded[i], messages[i])
		}
		if string(decoded[i].Payload) != string(messages[i].Payload) {
			t.Errorf("message %d payload: got %v, want %v", i, decoded[i].Payload, messages[i].Payload)
		}
	}
}

func TestDecodeEmptyDatagram(t *testing.T) {
	decoded, err := DecodeDatagram([]byte{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("got %d messages, want 0", len(decoded))
	}
}

func TestDecodeTruncatedDatagramIsMalformed(t *testing.T) {
	_, err := DecodeDatagram(nil)
	if err != ErrMalformedFrame {
		t.Fatalf("got %v, want ErrMalformedFrame", err)
	}
}

func TestDecodeZeroLengthMessageIsMalformed(t *testing.T) {
	data := []byte{1, 0x00, 0x00, 0x00, 0x00, TypeGameData}
	_, err := DecodeDatagram(data)
	if err != ErrMalformedFrame {
		t.Fatalf("got %v, want ErrMalformedFrame", err)
	}
}

func TestDecodePayloadOverrunIsMalformed(t *testing.T) {
	// Declares a 10-byte message body but the datagram only has 2 bytes left.
	data := []byte{1, 0x00, 0x00, 10, 0x00, TypeGameData, 0xAA}
	_, err := DecodeDatagram(data)
	if err != ErrMalformedFrame {
		t.Fatalf("got %v, want ErrMalformedFrame", err)
	}
}

func TestDecodeCountExceedsContentsIsMalformed(t *testing.T) {
	msg := Encode(Message{Seq: 0, Type: TypeC2SAck})
	data := append([]byte{2}, msg...) // claims 2 messages, contains 1
	_, err := DecodeDatagram(data)
	if err != ErrMalformedFrame {
		t.Fatalf("got %v, want ErrMalformedFrame", err)
	}
}

func TestUserLoginRoundTrip(t *testing.T) {
	login := UserLogin{Name: "Player1", Emulator: "snes9x", ConnType: 3}
	parsed, err := ParseUserLogin(BuildUserLogin(login))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != login {
		t.Errorf("got %+v, want %+v", parsed, login)
	}
}

func TestGameDataRoundTrip(t *testing.T) {
	gd := GameData{Data: []byte{0x01, 0x02, 0x03, 0x04}}
	parsed, err := ParseGameData(BuildGameData(gd))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(parsed.Data) != string(gd.Data) {
		t.Errorf("got %v, want %v", parsed.Data, gd.Data)
	}
}

func TestTruncateName(t *testing.T) {
	long := make([]byte, 40)
	for i := range long {
		long[i] = 'a'
	}
	got := TruncateName(string(long), MaxLoginNameBytes)
	if len(got) != MaxLoginNameBytes {
		t.Errorf("got length %d, want %d", len(got), MaxLoginNameBytes)
	}

	longGame := make([]byte, 200)
	for i := range longGame {
		longGame[i] = 'b'
	}
	gotGame := TruncateName(string(longGame), MaxGameNameBytes)
	if len(gotGame) != MaxGameNameBytes {
		t.Errorf("got length %d, want %d", len(gotGame), MaxGameNameBytes)
	}
}
