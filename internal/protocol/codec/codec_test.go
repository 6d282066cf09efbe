package codec

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFixedWidthIntegers(t *testing.T) {
	if v, err := Uint8([]byte{7}); err != nil || v != 7 {
		t.Fatalf("uint8: got %d err=%v", v, err)
	}
	if v, err := Uint16([]byte{0x05, 0xDC}); err != nil || v != 1500 {
		t.Fatalf("uint16: got %d err=%v", v, err)
	}
	if v, err := Uint32([]byte{0, 0, 4, 176}); err != nil || v != 1200 {
		t.Fatalf("uint32: got %d err=%v", v, err)
	}
	if v, err := Int32([]byte{0xFF, 0xFF, 0xFF, 0xF6}); err != nil || v != -10 {
		t.Fatalf("int32: got %d err=%v", v, err)
	}
}

func TestFixedWidthRejectsWrongLength(t *testing.T) {
	cases := map[string]error{}
	_, cases["uint8 empty"] = Uint8(nil)
	_, cases["uint8 long"] = Uint8([]byte{1, 2})
	_, cases["uint16 short"] = Uint16([]byte{1})
	_, cases["uint32 long"] = Uint32([]byte{0, 0, 0, 0, 1})
	_, cases["int32 short"] = Int32([]byte{0, 0, 1})
	_, cases["ipv4 short"] = IPv4([]byte{10, 0, 0})
	for name, err := range cases {
		if !errors.Is(err, ErrInvalidLength) || !errors.Is(err, ErrMalformedValue) {
			t.Fatalf("%s: expected ErrInvalidLength, got %v", name, err)
		}
	}
}

func TestBool(t *testing.T) {
	if v, err := Bool([]byte{1}); err != nil || !v {
		t.Fatalf("expected true, got %v err=%v", v, err)
	}
	for _, b := range []byte{0, 2, 0xFF} {
		if _, err := Bool([]byte{b}); !errors.Is(err, ErrInvalidBool) || !errors.Is(err, ErrMalformedValue) {
			t.Fatalf("byte %d: expected ErrInvalidBool, got %v", b, err)
		}
	}
	if _, err := Bool([]byte{1, 1}); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}

func TestString(t *testing.T) {
	if s, err := String([]byte("Test")); err != nil || s != "Test" {
		t.Fatalf("unexpected string %q err=%v", s, err)
	}
	if s, err := String(nil); err != nil || s != "" {
		t.Fatalf("expected empty string, got %q err=%v", s, err)
	}
	if _, err := String([]byte{'a', 0xC3, 0x28}); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestBytesCopiesInput(t *testing.T) {
	in := []byte{0, 1, 2}
	out := Bytes(in)
	in[0] = 9
	if out[0] != 0 {
		t.Fatalf("output aliases input")
	}
	if got := Bytes(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestIPv4List(t *testing.T) {
	got, err := IPv4List([]byte{127, 0, 0, 1, 192, 168, 1, 1})
	if err != nil {
		t.Fatalf("ipv4 list: %v", err)
	}
	want := []netip.Addr{netip.MustParseAddr("127.0.0.1"), netip.MustParseAddr("192.168.1.1")}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b netip.Addr) bool { return a == b })); diff != "" {
		t.Fatalf("ipv4 list mismatch (-want +got):\n%s", diff)
	}
	for _, bad := range [][]byte{nil, {1, 2, 3}, {1, 2, 3, 4, 5}} {
		if _, err := IPv4List(bad); !errors.Is(err, ErrInvalidLength) {
			t.Fatalf("len=%d: expected ErrInvalidLength, got %v", len(bad), err)
		}
	}
}

func TestIPv4PairsInterleave(t *testing.T) {
	got, err := IPv4Pairs([]byte{
		10, 0, 0, 0, 255, 0, 0, 0,
		192, 168, 0, 0, 255, 255, 0, 0,
	})
	if err != nil {
		t.Fatalf("ipv4 pairs: %v", err)
	}
	want := []IPv4Pair{
		{Addr: netip.MustParseAddr("10.0.0.0"), Mask: netip.MustParseAddr("255.0.0.0")},
		{Addr: netip.MustParseAddr("192.168.0.0"), Mask: netip.MustParseAddr("255.255.0.0")},
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b netip.Addr) bool { return a == b })); diff != "" {
		t.Fatalf("ipv4 pairs mismatch (-want +got):\n%s", diff)
	}
	if _, err := IPv4Pairs([]byte{1, 2, 3, 4}); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}

func TestUint16List(t *testing.T) {
	got, err := Uint16List([]byte{0x00, 0x44, 0x05, 0xDC})
	if err != nil {
		t.Fatalf("uint16 list: %v", err)
	}
	if diff := cmp.Diff([]uint16{68, 1500}, got); diff != "" {
		t.Fatalf("uint16 list mismatch (-want +got):\n%s", diff)
	}
	if _, err := Uint16List([]byte{1}); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}

type colour uint8

func (c colour) known() bool { return c >= 1 && c <= 3 }

func TestEnum(t *testing.T) {
	if c, err := Enum([]byte{2}, colour.known); err != nil || c != 2 {
		t.Fatalf("expected 2, got %d err=%v", c, err)
	}
	if _, err := Enum([]byte{9}, colour.known); !errors.Is(err, ErrUnknownEnum) {
		t.Fatalf("expected ErrUnknownEnum, got %v", err)
	}
	if _, err := Enum([]byte{1, 1}, colour.known); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}
