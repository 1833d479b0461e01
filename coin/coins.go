package coin

import (
	"sort"
	"strings"

	"github.com/iov-one/vault/errors"
)

// Coins is a set of coins of distinct assets, ordered by ticker. Zero
// value coins are dropped.
type Coins []*Coin

// CombineCoins sums all given coins into a valid set.
func CombineCoins(cs ...Coin) (Coins, error) {
	var (
		res Coins
		err error
	)
	for _, c := range cs {
		if res, err = res.Add(c); err != nil {
			return nil, err
		}
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

// Add returns a copy of the set with c added. The receiver is not
// modified.
func (cs Coins) Add(c Coin) (Coins, error) {
	res := make(Coins, len(cs), len(cs)+1)
	for i, have := range cs {
		cpy := *have
		res[i] = &cpy
	}
	if c.IsZero() {
		return res, nil
	}

	i := res.search(c.Ticker)
	if i == len(res) || res[i].Ticker != c.Ticker {
		res = append(res, nil)
		copy(res[i+1:], res[i:])
		res[i] = &c
		return res, nil
	}

	sum, err := res[i].Add(c)
	if err != nil {
		return nil, err
	}
	if sum.IsZero() {
		return append(res[:i], res[i+1:]...), nil
	}
	res[i] = &sum
	return res, nil
}

// Subtract returns a copy of the set with c removed. Resulting amounts
// can be negative.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	return cs.Add(c.Negative())
}

// search returns the position of the ticker, or the position it should be
// inserted at.
func (cs Coins) search(ticker string) int {
	return sort.Search(len(cs), func(i int) bool {
		return cs[i].Ticker >= ticker
	})
}

// Balance returns the amount held of given asset.
func (cs Coins) Balance(ticker string) Coin {
	if i := cs.search(ticker); i < len(cs) && cs[i].Ticker == ticker {
		return *cs[i]
	}
	return Coin{Ticker: ticker}
}

// Contains returns true if the set holds at least c. A zero coin is
// always contained.
func (cs Coins) Contains(c Coin) bool {
	return c.IsZero() || cs.Balance(c.Ticker).IsGTE(c)
}

// IsNonNegative returns false if any of the amounts is negative.
func (cs Coins) IsNonNegative() bool {
	for _, c := range cs {
		if !c.IsNonNegative() {
			return false
		}
	}
	return true
}

func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i, c := range cs {
		if !c.Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Validate checks every coin and that the set is ordered, has no
// duplicates and no zero amounts.
func (cs Coins) Validate() error {
	var errs error
	for i, c := range cs {
		if c == nil {
			errs = errors.Append(errs, errors.Wrapf(errors.ErrEmpty, "coin %d", i))
			continue
		}
		errs = errors.Append(errs, errors.Wrapf(c.Validate(), "coin %d", i))
		if c.IsZero() {
			errs = errors.Append(errs, errors.Wrapf(errors.ErrState, "coin %d: zero amount", i))
		}
		if i > 0 && cs[i-1] != nil && cs[i-1].Ticker >= c.Ticker {
			errs = errors.Append(errs, errors.Wrapf(errors.ErrState, "coin %d: not sorted", i))
		}
	}
	return errs
}

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
