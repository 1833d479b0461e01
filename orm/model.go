package orm

import "github.com/iov-one/vault"

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	vault.Persistent
	Validate() error
}

// ModelPtr constrains a type parameter to be a pointer to T implementing
// Model. This allows the bucket to allocate new instances when loading.
type ModelPtr[T any] interface {
	*T
	Model
}

// Indexer returns the value an entity is indexed by. Returning a nil value
// excludes the entity from the index.
type Indexer[P any] func(P) ([]byte, error)
