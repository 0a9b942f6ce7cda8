package common

import (
	"bytes"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}

	encoded := EncodeToString(raw)
	if encoded != "0XDEADBEEF" {
		t.Fatalf("encoded form should be 0XDEADBEEF, not %s", encoded)
	}

	decoded, err := DecodeFromString(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Fatalf("decoded bytes %v do not match %v", decoded, raw)
	}

	if _, err := DecodeFromString("0"); err == nil {
		t.Fatal("expected an error for a short string")
	}
}
