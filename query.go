package vault

import "fmt"

// Query modifiers are passed after "?" in the query path.
const (
	// KeyQueryMod selects the value stored under the exact key.
	KeyQueryMod = ""
	// PrefixQueryMod selects all values with keys starting with the data.
	PrefixQueryMod = "prefix"
)

// Model is a single key value pair returned by a query.
type Model struct {
	Key   []byte
	Value []byte
}

func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

// QueryHandler reads models from the store. The meaning of data depends
// on the modifier.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRegister adds the handlers of an extension to a router.
type QueryRegister func(QueryRouter)

// QueryRouter dispatches queries by their path.
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{routes: make(map[string]QueryHandler)}
}

// RegisterAll calls all given registers.
func (r QueryRouter) RegisterAll(regs ...QueryRegister) {
	for _, register := range regs {
		register(r)
	}
}

// Register binds a handler to a path. A path can be registered only once
// and a second attempt panics.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if _, exists := r.routes[path]; exists {
		panic(fmt.Sprintf("query path %q already registered", path))
	}
	r.routes[path] = h
}

// Handler returns the handler of given path or nil.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}
