package vaulttest

import "github.com/iov-one/vault"

// Tx carries a single message. GetMsg fails with Err if set.
type Tx struct {
	Msg vault.Msg
	Err error
}

var _ vault.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (vault.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("vaulttest: Tx cannot be serialized")
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("vaulttest: Tx cannot be serialized")
}

// Msg is routed by RoutePath. Every method fails with Err if set.
type Msg struct {
	RoutePath  string
	Serialized []byte
	Err        error
}

var _ vault.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}

func (m *Msg) Unmarshal(raw []byte) error {
	m.Serialized = raw
	return m.Err
}

func (m *Msg) Validate() error {
	return m.Err
}
