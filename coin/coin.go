package coin

import (
	"encoding/json"
	"regexp"

	"github.com/iov-one/vault/errors"
	"github.com/shopspring/decimal"
)

// IsCC tells if given string is a valid ticker.
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// MaxInt is the biggest accepted whole value, 10^15-1.
	MaxInt int64 = 999999999999999
	// MinInt is the smallest accepted whole value.
	MinInt = -MaxInt

	// FracUnit is the number of fractional units in a single whole unit.
	FracUnit int64 = 1000000000
	// MaxFrac is the biggest accepted fractional value.
	MaxFrac = FracUnit - 1
	// MinFrac is the smallest accepted fractional value.
	MinFrac = -MaxFrac

	fracDigits = 9
)

var (
	maxWhole = decimal.New(MaxInt, 0)
	minWhole = decimal.New(MinInt, 0)
)

// Coin is an amount of a single asset. The value is split into the whole
// part and the fractional part expressed in 10^-9 units. When both parts
// are set they must have the same sign.
type Coin struct {
	Whole      int64  `json:"whole,omitempty"`
	Fractional int64  `json:"fractional,omitempty"`
	Ticker     string `json:"ticker,omitempty"`
}

// NewCoin returns a coin. No validation is done.
func NewCoin(whole int64, fractional int64, ticker string) Coin {
	return Coin{Whole: whole, Fractional: fractional, Ticker: ticker}
}

// NewCoinp is NewCoin returning a pointer.
func NewCoinp(whole, fractional int64, ticker string) *Coin {
	c := NewCoin(whole, fractional, ticker)
	return &c
}

// Decimal returns the value of the coin. Ticker is ignored.
func (c Coin) Decimal() decimal.Decimal {
	return decimal.New(c.Whole, 0).Add(decimal.New(c.Fractional, -fracDigits))
}

// fromDecimal splits a decimal value into whole and fractional parts.
// Truncation is towards zero so both parts always share the sign.
func fromDecimal(d decimal.Decimal, ticker string) (Coin, error) {
	whole := d.Truncate(0)
	if whole.GreaterThan(maxWhole) || whole.LessThan(minWhole) {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "whole value of %s", d)
	}
	frac := d.Sub(whole).Shift(fracDigits)
	if !frac.Equal(frac.Truncate(0)) {
		return Coin{}, errors.Wrapf(errors.ErrInput, "more than %d fractional digits", fracDigits)
	}
	return NewCoin(whole.IntPart(), frac.IntPart(), ticker), nil
}

// Add returns the sum of both coins. A zero coin without a ticker is
// neutral. Otherwise both tickers must match.
func (c Coin) Add(o Coin) (Coin, error) {
	switch {
	case c.Ticker == "" && c.IsZero():
		return o, nil
	case o.Ticker == "" && o.IsZero():
		return c, nil
	case !c.SameType(o):
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "cannot add %s to %s", o.Ticker, c.Ticker)
	}
	return fromDecimal(c.Decimal().Add(o.Decimal()), c.Ticker)
}

// Subtract returns c minus o. The result can be negative.
func (c Coin) Subtract(o Coin) (Coin, error) {
	return c.Add(o.Negative())
}

// Negative returns the coin with both parts negated.
func (c Coin) Negative() Coin {
	return NewCoin(-c.Whole, -c.Fractional, c.Ticker)
}

// Compare returns 1 if c is bigger than o, -1 if it is smaller and 0 when
// both values are equal. Tickers are not compared.
func (c Coin) Compare(o Coin) int {
	return c.Decimal().Cmp(o.Decimal())
}

// Equals returns true if both coins are of the same asset and hold the
// same value.
func (c Coin) Equals(o Coin) bool {
	return c.SameType(o) && c.Whole == o.Whole && c.Fractional == o.Fractional
}

// SameQuantity compares values only.
func (c Coin) SameQuantity(o Coin) bool {
	return c.Compare(o) == 0
}

// SameType returns true if both coins are of the same asset.
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// IsEmpty returns true for a nil or a zero value coin.
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

func (c Coin) IsZero() bool {
	return c.Whole == 0 && c.Fractional == 0
}

func (c Coin) IsPositive() bool {
	return c.Decimal().Sign() > 0
}

func (c Coin) IsNonNegative() bool {
	return c.Whole >= 0 && c.Fractional >= 0
}

// IsGTE returns true if o is of the same asset and not bigger than c.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Compare(o) >= 0
}

// Validate checks the ticker and the range of both value parts. Negative
// values are valid.
func (c Coin) Validate() error {
	var errs error
	if !IsCC(c.Ticker) {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrCurrency, "ticker %q", c.Ticker))
	}
	if c.Whole > MaxInt || c.Whole < MinInt {
		errs = errors.Append(errs, errors.Wrap(errors.ErrOverflow, "whole"))
	}
	if c.Fractional > MaxFrac || c.Fractional < MinFrac {
		errs = errors.Append(errs, errors.Wrap(errors.ErrOverflow, "fractional"))
	}
	if (c.Whole > 0 && c.Fractional < 0) || (c.Whole < 0 && c.Fractional > 0) {
		errs = errors.Append(errs, errors.Wrap(errors.ErrState, "whole and fractional signs differ"))
	}
	return errs
}

// String returns the human readable format, for example "1.5 IOV".
func (c Coin) String() string {
	s := c.Decimal().String()
	if c.Ticker == "" {
		return s
	}
	return s + " " + c.Ticker
}

var humanFormat = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*([A-Z]{3,4})\s*$`)

// ParseHumanFormat parses "[-]<whole>[.<fractional>] <ticker>". At most
// nine fractional digits are accepted.
func ParseHumanFormat(h string) (Coin, error) {
	m := humanFormat.FindStringSubmatch(h)
	if m == nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}
	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "amount: %s", err)
	}
	return fromDecimal(amount, m[2])
}

// UnmarshalJSON accepts either a string in the human readable format or
// an object with whole, fractional and ticker attributes.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if json.Unmarshal(raw, &human) == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// A distinct type is required to not recurse into this method.
	type plain Coin
	var p plain
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.Wrapf(errors.ErrInput, "coin: %s", err)
	}
	*c = Coin(p)
	return nil
}
