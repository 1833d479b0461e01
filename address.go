package vault

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/vault/errors"
)

// AddressLength is the size of every address. It must never change for an
// existing database.
const AddressLength = 20

// Address is a one way digest of a condition.
type Address []byte

// NewAddress returns the truncated sha256 digest of data. Empty data has
// an address too.
func NewAddress(data []byte) Address {
	sum := sha256.Sum256(data)
	return Address(sum[:AddressLength])
}

func (a Address) Equals(o Address) bool {
	return bytes.Equal(a, o)
}

func (a Address) Validate() error {
	switch len(a) {
	case 0:
		return errors.Wrap(errors.ErrEmpty, "address")
	case AddressLength:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "address of %d bytes", len(a))
	}
}

// String returns the upper case hex representation.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// MarshalJSON encodes the address as a hex string instead of base64.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(a)))
}

// addressDecoders are selected by the "<format>:" prefix of an encoded
// address.
var addressDecoders = map[string]func(string) (Address, error){
	"hex":    decodeHexAddress,
	"bech32": ParseBech32,
	"cond":   decodeConditionAddress,
}

// UnmarshalJSON decodes a string address. Hex is the default encoding and
// a "hex:", "bech32:" or "cond:" prefix selects one explicitly. An empty
// value is a nil address.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrapf(errors.ErrInput, "address: %s", err)
	}
	format, enc := "hex", s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		format, enc = s[:i], s[i+1:]
	}
	decode, ok := addressDecoders[format]
	if !ok {
		return errors.Wrapf(errors.ErrType, "unknown address format %q", format)
	}
	if enc == "" {
		*a = nil
		return nil
	}
	addr, err := decode(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func decodeHexAddress(enc string) (Address, error) {
	raw, err := hex.DecodeString(enc)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "hex address: %s", err)
	}
	addr := Address(raw)
	return addr, addr.Validate()
}

func decodeConditionAddress(enc string) (Address, error) {
	c, err := parseCondition(enc)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.Address(), nil
}

// ParseBech32 decodes a bech32 address. The human readable part is
// ignored.
func ParseBech32(enc string) (Address, error) {
	_, data, err := bech32.Decode(enc)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "bech32 payload: %s", err)
	}
	addr := Address(raw)
	return addr, addr.Validate()
}

// Bech32String encodes the address with given human readable part.
func (a Address) Bech32String(hrp string) (string, error) {
	data, err := bech32.ConvertBits(a, 8, 5, true)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "bech32 payload: %s", err)
	}
	enc, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	return enc, nil
}
