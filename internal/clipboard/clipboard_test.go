package clipboard

import (
	"bytes"
	"testing"
)

func TestBufferRoundTrip(t *testing.T) {
	b := NewBuffer()

	if data, err := b.Read(); err != nil || data != nil {
		t.Fatalf("fresh buffer = %q, %v", data, err)
	}

	payload := []byte(`{"objects":[]}`)
	if err := b.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := b.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("Read = %q, want %q", data, payload)
	}

	// A second write replaces the content.
	if err := b.Write([]byte("next")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ = b.Read()
	if string(data) != "next" {
		t.Errorf("Read = %q, want next", data)
	}
}
