package cdc

import (
	"testing"

	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/vaulttest/assert"
)

type sample struct {
	Name  string
	Count int64
	Data  []byte
}

func TestRoundtrip(t *testing.T) {
	in := sample{Name: "vault", Count: 42, Data: []byte("payload")}
	raw, err := Marshal(&in)
	assert.Nil(t, err)

	var out sample
	assert.Nil(t, Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshalGarbage(t *testing.T) {
	var out sample
	err := Unmarshal([]byte{0xff, 0xff, 0xff}, &out)
	if !errors.ErrModel.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}
