package transport

import (
	"testing"

	"github.com/kaillera-go/relay/internal/protocol"
)

func TestRedundantSenderRingGrowsThenCaps(t *testing.T) {
	s := NewRedundantSender()

	d1 := s.Send(protocol.TypeGameData, []byte{0x01})
	if d1[0] != 1 {
		t.Fatalf("first datagram count = %d, want 1", d1[0])
	}

	d2 := s.Send(protocol.TypeGameData, []byte{0x02})
	if d2[0] != 2 {
		t.Fatalf("second datagram count = %d, want 2", d2[0])
	}

	d3 := s.Send(protocol.TypeGameData, []byte{0x03})
	if d3[0] != 3 {
		t.Fatalf("third datagram count = %d, want 3", d3[0])
	}

	d4 := s.Send(protocol.TypeGameData, []byte{0x04})
	if d4[0] != 3 {
		t.Fatalf("fourth datagram count = %d, want 3 (capped)", d4[0])
	}

	decoded, err := protocol.DecodeDatagram(d4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("got %d messages, want 3", len(decoded))
	}
	// Newest first: seq 3 (payload 0x04), seq 2, seq 1. Seq 0's copy has
	// aged out of the ring.
	wantSeqs := []uint16{3, 2, 1}
	for i, want := range wantSeqs {
		if decoded[i].Seq != want {
			t.Errorf("message %d: seq = %d, want %d", i, decoded[i].Seq, want)
		}
	}
}

func TestRedundantSenderSeqIncrementsAndWraps(t *testing.T) {
	s := &RedundantSender{seq: 0xFFFF}
	s.Send(protocol.TypeGameData, []byte{0x01})
	if s.NextSeq() != 0 {
		t.Fatalf("seq after wraparound = %d, want 0", s.NextSeq())
	}
}
