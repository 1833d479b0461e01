package currency

import (
	"regexp"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/cdc"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
)

var isTokenName = regexp.MustCompile(`^[A-Za-z0-9 \-_:]{3,32}$`).MatchString

// TokenInfo describes an asset known to the ledger.
type TokenInfo struct {
	Metadata *vault.Metadata `json:"metadata"`
	Name     string          `json:"name"`
}

var _ orm.Model = (*TokenInfo)(nil)

func (t *TokenInfo) Marshal() ([]byte, error)   { return cdc.Marshal(t) }
func (t *TokenInfo) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, t) }

func (t *TokenInfo) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", t.Metadata.Validate())
	if !isTokenName(t.Name) {
		errs = errors.Append(errs, errors.Field("Name", errors.ErrInput, "invalid token name %q", t.Name))
	}
	return errs
}

// TokenInfoBucket stores TokenInfo instances, using ticker name (currency
// symbol) as the key.
type TokenInfoBucket struct {
	*orm.ModelBucket[TokenInfo, *TokenInfo]
}

// NewTokenInfoBucket returns the bucket all tokens are stored in.
func NewTokenInfoBucket() TokenInfoBucket {
	return TokenInfoBucket{
		ModelBucket: orm.NewModelBucket[TokenInfo]("tokeninfo"),
	}
}

// Save stores token information under given ticker.
func (b TokenInfoBucket) Save(db vault.KVStore, ticker string, t *TokenInfo) error {
	if !coin.IsCC(ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", ticker)
	}
	_, err := b.Put(db, []byte(ticker), t)
	return err
}

// Resolve returns information about the asset with given ticker.
// ErrNotFound is returned for unknown assets.
func Resolve(db vault.ReadOnlyKVStore, ticker string) (*TokenInfo, error) {
	if !coin.IsCC(ticker) {
		return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", ticker)
	}
	t, err := NewTokenInfoBucket().One(db, []byte(ticker))
	if err != nil {
		return nil, errors.Wrapf(err, "asset %s", ticker)
	}
	return t, nil
}

// RegisterQuery exposes all tokens under "/tokens".
func RegisterQuery(qr vault.QueryRouter) {
	NewTokenInfoBucket().Register("tokens", qr)
}
