package vault

import "github.com/iov-one/vault/errors"

// Metadata is present in every persisted entity and message. Schema
// declares the version of the structure the data was created with.
type Metadata struct {
	Schema uint32 `json:"schema"`
}

// Validate returns an error if the metadata is not valid.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrMetadata, "metadata missing")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrMetadata, "schema version must be greater than zero")
	}
	return nil
}

