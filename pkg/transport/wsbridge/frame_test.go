package wsbridge

import (
	"bytes"
	"testing"
)

func TestFrameRoundTripInsertBefore(t *testing.T) {
	f := Frame{Op: OpInsertBefore, Parent: 1, Child: 300, Ref: 7}
	got, err := DecodeFrame(f.Encode())
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got != f {
		t.Fatalf("round trip = %+v, want %+v", got, f)
	}
}

func TestFrameRoundTripRemoveChild(t *testing.T) {
	f := Frame{Op: OpRemoveChild, Parent: 42, Child: 99}
	got, err := DecodeFrame(f.Encode())
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got != f {
		t.Fatalf("round trip = %+v, want %+v", got, f)
	}
}

func TestFrameRoundTripReplaceChild(t *testing.T) {
	f := Frame{Op: OpReplaceChild, Parent: 1, Child: 5, Old: 6}
	got, err := DecodeFrame(f.Encode())
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got != f {
		t.Fatalf("round trip = %+v, want %+v", got, f)
	}
}

func TestFrameRoundTripCreate(t *testing.T) {
	f := Frame{Op: OpCreate, Child: 123, Kind: "div", Payload: []byte(`{"class":"row"}`)}
	got, err := DecodeFrame(f.Encode())
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.Op != f.Op || got.Child != f.Child || got.Kind != f.Kind || !bytes.Equal(got.Payload, f.Payload) {
		t.Fatalf("round trip = %+v, want %+v", got, f)
	}
}

func TestDecodeFrameTruncated(t *testing.T) {
	f := Frame{Op: OpInsertBefore, Parent: 300, Child: 7, Ref: 1}
	enc := f.Encode()
	if _, err := DecodeFrame(enc[:len(enc)-1]); err == nil {
		t.Fatal("expected error decoding truncated frame")
	}
}

func TestDecodeFrameUnknownOp(t *testing.T) {
	if _, err := DecodeFrame([]byte{0xff}); err != ErrUnknownOp {
		t.Fatalf("err = %v, want ErrUnknownOp", err)
	}
}

func TestUvarintRoundTripLargeValues(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<63 - 1}
	for _, v := range values {
		buf := putUvarint(nil, v)
		got, n, ok := readUvarint(buf)
		if !ok || n != len(buf) || got != v {
			t.Fatalf("uvarint round trip for %d: got=%d n=%d ok=%v", v, got, n, ok)
		}
	}
}
