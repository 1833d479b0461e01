package vault_test

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressValidate(t *testing.T) {
	assert.True(t, errors.ErrEmpty.Is(vault.Address(nil).Validate()))
	assert.True(t, errors.ErrInput.Is(vault.Address("too short").Validate()))
	assert.NoError(t, vault.NewAddress([]byte("owner")).Validate())
	assert.Len(t, vault.NewAddress(nil), vault.AddressLength)
	assert.Equal(t, vault.NewAddress(nil), vault.NewAddress([]byte{}))
	assert.NoError(t, vault.NewAddress(nil).Validate())
}

func TestAddressString(t *testing.T) {
	addr := vault.NewAddress([]byte("recipient"))
	assert.Equal(t, strings.ToUpper(hex.EncodeToString(addr)), addr.String())
	assert.Equal(t, "(nil)", vault.Address(nil).String())
	assert.Equal(t, "(nil)", vault.Address{}.String())
}

func TestAddressUnmarshalJSON(t *testing.T) {
	addr := vault.NewAddress([]byte("holding"))
	upper := strings.ToUpper(hex.EncodeToString(addr))
	bech, err := addr.Bech32String("vlt")
	require.NoError(t, err)
	cond := vault.NewCondition("timelock", "balance", []byte{0, 0, 0, 9})

	cases := map[string]struct {
		raw     string
		want    vault.Address
		wantErr error
	}{
		"hex without prefix":     {raw: `"` + upper + `"`, want: addr},
		"lower case hex":         {raw: `"hex:` + strings.ToLower(upper) + `"`, want: addr},
		"bech32":                 {raw: `"bech32:` + bech + `"`, want: addr},
		"condition":              {raw: `"cond:timelock/balance/00000009"`, want: cond.Address()},
		"empty":                  {raw: `""`, want: nil},
		"empty condition":        {raw: `"cond:"`, want: nil},
		"condition without type": {raw: `"cond:timelock/00000009"`, wantErr: errors.ErrInput},
		"condition data not hex": {raw: `"cond:timelock/balance/xyz"`, wantErr: errors.ErrInput},
		"wrong length":           {raw: `"hex:0102030405"`, wantErr: errors.ErrInput},
		"broken bech32":          {raw: `"bech32:vlt1qqqq"`, wantErr: errors.ErrInput},
		"unknown prefix":         {raw: `"base64:AAAA"`, wantErr: errors.ErrType},
		"not a string":           {raw: `12`, wantErr: errors.ErrInput},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got vault.Address
			err := json.Unmarshal([]byte(tc.raw), &got)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.(*errors.Error).Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAddressJSONRoundtrip(t *testing.T) {
	addr := vault.NewAddress([]byte("roundtrip"))
	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"`+addr.String()+`"`, string(raw))

	var got vault.Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, addr.Equals(got))
}

func TestBech32Roundtrip(t *testing.T) {
	addr := vault.NewAddress([]byte("bech"))
	enc, err := addr.Bech32String("vlt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "vlt1"))

	got, err := vault.ParseBech32(enc)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}
