package app

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/cdc"
	"github.com/iov-one/vault/errors"
)

// ResultSet is the query response encoding. The keys and the values of
// the matched models are sent as two result sets of the same length.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

func (r *ResultSet) Marshal() ([]byte, error) { return cdc.Marshal(r) }

// Unmarshal reads an empty input as an empty set.
func (r *ResultSet) Unmarshal(raw []byte) error {
	r.Results = nil
	if len(raw) == 0 {
		return nil
	}
	return cdc.Unmarshal(raw, r)
}

func ResultsFromKeys(models []vault.Model) *ResultSet {
	set := &ResultSet{Results: make([][]byte, 0, len(models))}
	for _, m := range models {
		set.Results = append(set.Results, m.Key)
	}
	return set
}

func ResultsFromValues(models []vault.Model) *ResultSet {
	set := &ResultSet{Results: make([][]byte, 0, len(models))}
	for _, m := range models {
		set.Results = append(set.Results, m.Value)
	}
	return set
}

// JoinResults pairs keys with values again.
func JoinResults(keys, values *ResultSet) ([]vault.Model, error) {
	if n, m := len(keys.Results), len(values.Results); n != m {
		return nil, errors.Wrapf(errors.ErrState, "%d keys for %d values", n, m)
	}
	models := make([]vault.Model, 0, len(keys.Results))
	for i, k := range keys.Results {
		models = append(models, vault.Pair(k, values.Results[i]))
	}
	return models, nil
}

// UnmarshalOneResult decodes the first value of a result set into dst. An
// empty set leaves dst unchanged.
func UnmarshalOneResult(raw []byte, dst vault.Persistent) error {
	var set ResultSet
	if err := set.Unmarshal(raw); err != nil {
		return err
	}
	if len(set.Results) == 0 {
		return nil
	}
	return dst.Unmarshal(set.Results[0])
}

func toModels(rawKeys, rawValues []byte) ([]vault.Model, error) {
	var keys, values ResultSet
	if err := keys.Unmarshal(rawKeys); err != nil {
		return nil, errors.Wrap(err, "keys")
	}
	if err := values.Unmarshal(rawValues); err != nil {
		return nil, errors.Wrap(err, "values")
	}
	return JoinResults(&keys, &values)
}
