package crypto

import (
	"errors"
	"testing"

	"github.com/Lafeng/dhdemo/modp"
)

func Test_dhe_agreement(t *testing.T) {
	for i := 0; i < 50; i++ {
		a, err := GenerateDHEKey(2, 11, nil)
		if err != nil {
			t.Fatal(err)
		}
		b, err := GenerateDHEKey(2, 11, nil)
		if err != nil {
			t.Fatal(err)
		}
		ka, err1 := a.ComputeValue(b.PublicValue())
		kb, err2 := b.ComputeValue(a.PublicValue())
		if err1 != nil || err2 != nil || ka != kb {
			t.Fatalf("ka=%d kb=%d err=%v/%v", ka, kb, err1, err2)
		}
		if y := a.PublicValue(); y == 0 || y >= 11 {
			t.Fatalf("public value %d outside the group", y)
		}
	}
}

func Test_dhe_invalid(t *testing.T) {
	if _, err := GenerateDHEKey(2, 2, nil); !errors.Is(err, INVALID_GROUP) {
		t.Fatalf("err=%v", err)
	}
	k, _ := GenerateDHEKey(2, 11, nil)
	if _, err := k.ComputeValue(0); !errors.Is(err, INVALID_PUBKEY) {
		t.Fatalf("err=%v", err)
	}
	if _, err := k.ComputeValue(11); !errors.Is(err, INVALID_PUBKEY) {
		t.Fatalf("err=%v", err)
	}
}

func Test_eavesdrop_rejects_bad_group(t *testing.T) {
	var groups = [][2]uint64{
		{2, 15}, // composite
		{2, 2},
		{3, 11}, // not a primitive root
		{1, 23},
	}
	for _, g := range groups {
		if _, err := Eavesdrop(g[0], g[1], nil); !errors.Is(err, INVALID_GROUP) {
			t.Fatalf("alpha=%d q=%d err=%v", g[0], g[1], err)
		}
	}
}

func Test_eavesdrop(t *testing.T) {
	var groups = [][2]uint64{
		{2, 11},
		{5, 23},
		{3, 65537},
	}
	for _, g := range groups {
		for i := 0; i < 5; i++ {
			ic, err := Eavesdrop(g[0], g[1], nil)
			if err != nil {
				t.Fatalf("alpha=%d q=%d err=%v", g[0], g[1], err)
			}
			if !ic.Broken() {
				t.Fatalf("%+v", ic)
			}
			if modp.Exp(g[0], ic.RecoveredA, g[1]) != ic.PublicA {
				t.Fatalf("recovered exponent does not reproduce YA: %+v", ic)
			}
		}
	}
}
