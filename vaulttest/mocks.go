package vaulttest

import "github.com/iov-one/vault"

// counter tracks how many times check and deliver were called.
type counter struct {
	checks   int
	delivers int
}

func (c *counter) CheckCallCount() int   { return c.checks }
func (c *counter) DeliverCallCount() int { return c.delivers }
func (c *counter) CallCount() int        { return c.checks + c.delivers }

// Handler returns the configured results or errors and counts the calls.
type Handler struct {
	counter

	CheckResult   vault.CheckResult
	CheckErr      error
	DeliverResult vault.DeliverResult
	DeliverErr    error
}

var _ vault.Handler = (*Handler)(nil)

func (h *Handler) Check(vault.Context, vault.KVStore, vault.Tx) (*vault.CheckResult, error) {
	h.checks++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(vault.Context, vault.KVStore, vault.Tx) (*vault.DeliverResult, error) {
	h.delivers++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

// Decorator returns the configured error or, if not set, calls the next
// handler. Calls are counted in both cases.
type Decorator struct {
	counter

	CheckErr   error
	DeliverErr error
}

var _ vault.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Checker) (*vault.CheckResult, error) {
	d.checks++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Deliverer) (*vault.DeliverResult, error) {
	d.delivers++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

// WriteHandler sets Key to Value and then fails with Err, if set.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ vault.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) write(db vault.KVStore) error {
	if err := db.Set(h.Key, h.Value); err != nil {
		return err
	}
	return h.Err
}

func (h *WriteHandler) Check(_ vault.Context, db vault.KVStore, _ vault.Tx) (*vault.CheckResult, error) {
	if err := h.write(db); err != nil {
		return nil, err
	}
	return &vault.CheckResult{}, nil
}

func (h *WriteHandler) Deliver(_ vault.Context, db vault.KVStore, _ vault.Tx) (*vault.DeliverResult, error) {
	if err := h.write(db); err != nil {
		return nil, err
	}
	return &vault.DeliverResult{}, nil
}

// PanicHandler panics with Msg.
type PanicHandler struct {
	Msg string
}

var _ vault.Handler = PanicHandler{}

func (p PanicHandler) Check(vault.Context, vault.KVStore, vault.Tx) (*vault.CheckResult, error) {
	panic(p.Msg)
}

func (p PanicHandler) Deliver(vault.Context, vault.KVStore, vault.Tx) (*vault.DeliverResult, error) {
	panic(p.Msg)
}
