package vault_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCondition(t *testing.T) {
	Convey("a condition of a time lock balance", t, func() {
		data := []byte{0, 0, 0, 0, 0, 0, 0, 3}
		cond := vault.NewCondition("timelock", "balance", data)

		Convey("is valid and parses back into its parts", func() {
			So(cond.Validate(), ShouldBeNil)
			ext, typ, got, err := cond.Parse()
			So(err, ShouldBeNil)
			So(ext, ShouldEqual, "timelock")
			So(typ, ShouldEqual, "balance")
			So(got, ShouldResemble, data)
		})

		Convey("prints its data as hex", func() {
			So(cond.String(), ShouldEqual, fmt.Sprintf("timelock/balance/%X", data))
		})

		Convey("controls a valid address", func() {
			So(cond.Address().Validate(), ShouldBeNil)
			So(cond.Address(), ShouldResemble, vault.NewAddress(cond))
			So(cond.Address(), ShouldNotResemble, vault.NewCondition("timelock", "balance", []byte{1}).Address())
		})

		Convey("survives a JSON roundtrip", func() {
			raw, err := json.Marshal(cond)
			So(err, ShouldBeNil)
			var got vault.Condition
			So(json.Unmarshal(raw, &got), ShouldBeNil)
			So(got.Equals(cond), ShouldBeTrue)
		})
	})

	Convey("an invalid condition", t, func() {
		cond := vault.Condition("timelock")

		So(errors.ErrInput.Is(cond.Validate()), ShouldBeTrue)
		So(cond.String(), ShouldStartWith, "Invalid Condition")
	})

	Convey("a too short extension name", t, func() {
		So(vault.NewCondition("tl", "balance", []byte{1}).Validate(), ShouldNotBeNil)
	})
}

func TestConditionUnmarshalJSON(t *testing.T) {
	Convey("decoding a condition", t, func() {
		var got vault.Condition

		Convey("from ext/type/hex", func() {
			So(json.Unmarshal([]byte(`"sigs/ed25519/0A0B"`), &got), ShouldBeNil)
			So(got.Equals(vault.NewCondition("sigs", "ed25519", []byte{10, 11})), ShouldBeTrue)
		})

		Convey("from an empty string", func() {
			So(json.Unmarshal([]byte(`""`), &got), ShouldBeNil)
			So(got, ShouldBeNil)
		})

		Convey("without a type", func() {
			err := json.Unmarshal([]byte(`"sigs/0A0B"`), &got)
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})

		Convey("with data that is not hex", func() {
			err := json.Unmarshal([]byte(`"sigs/ed25519/nothex"`), &got)
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})
	})
}
