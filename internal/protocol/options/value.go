package options

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"

	"github.com/danmuck/dhcpopt/internal/protocol/codec"
)

// Value is the decoded payload of one option. Each concrete type
// corresponds to one value shape of the catalog.
type Value interface {
	fmt.Stringer
	isValue()
}

type (
	Uint8      uint8
	Uint16     uint16
	Uint32     uint32
	Int32      int32
	Bool       bool
	Text       string
	Bytes      []byte
	IP         netip.Addr
	IPList     []netip.Addr
	IPPairs    []codec.IPv4Pair
	Uint16List []uint16
	CodeList   []Code
	SubOptions []SubOption
)

func (Uint8) isValue()       {}
func (Uint16) isValue()      {}
func (Uint32) isValue()      {}
func (Int32) isValue()       {}
func (Bool) isValue()        {}
func (Text) isValue()        {}
func (Bytes) isValue()       {}
func (IP) isValue()          {}
func (IPList) isValue()      {}
func (IPPairs) isValue()     {}
func (Uint16List) isValue()  {}
func (CodeList) isValue()    {}
func (SubOptions) isValue()  {}
func (MessageType) isValue() {}
func (NodeType) isValue()    {}
func (Overload) isValue()    {}

func (v Uint8) String() string  { return fmt.Sprintf("%d", uint8(v)) }
func (v Uint16) String() string { return fmt.Sprintf("%d", uint16(v)) }
func (v Uint32) String() string { return fmt.Sprintf("%d", uint32(v)) }
func (v Int32) String() string  { return fmt.Sprintf("%d", int32(v)) }
func (v Bool) String() string   { return fmt.Sprintf("%t", bool(v)) }
func (v Text) String() string   { return fmt.Sprintf("%q", string(v)) }
func (v Bytes) String() string  { return hex.EncodeToString(v) }
func (v IP) String() string     { return netip.Addr(v).String() }

func (v IPList) String() string {
	parts := make([]string, 0, len(v))
	for _, a := range v {
		parts = append(parts, a.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (v IPPairs) String() string {
	parts := make([]string, 0, len(v))
	for _, p := range v {
		parts = append(parts, p.Addr.String()+"/"+p.Mask.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (v Uint16List) String() string { return fmt.Sprint([]uint16(v)) }

func (v CodeList) String() string {
	parts := make([]string, 0, len(v))
	for _, c := range v {
		parts = append(parts, fmt.Sprintf("%d", uint8(c)))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (v SubOptions) String() string {
	parts := make([]string, 0, len(v))
	for _, s := range v {
		parts = append(parts, s.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (v Bytes) MarshalJSON() ([]byte, error) { return json.Marshal(hex.EncodeToString(v)) }
func (v IP) MarshalJSON() ([]byte, error)    { return json.Marshal(v.String()) }

func (v IPList) MarshalJSON() ([]byte, error) {
	out := make([]string, 0, len(v))
	for _, a := range v {
		out = append(out, a.String())
	}
	return json.Marshal(out)
}

func (v IPPairs) MarshalJSON() ([]byte, error) {
	type pair struct {
		Addr string `json:"addr"`
		Mask string `json:"mask"`
	}
	out := make([]pair, 0, len(v))
	for _, p := range v {
		out = append(out, pair{Addr: p.Addr.String(), Mask: p.Mask.String()})
	}
	return json.Marshal(out)
}

// CodeList would otherwise encode as base64 like a []byte.
func (v CodeList) MarshalJSON() ([]byte, error) {
	out := make([]int, 0, len(v))
	for _, c := range v {
		out = append(out, int(c))
	}
	return json.Marshal(out)
}

// MessageType is the DHCP message type carried by option 53.
type MessageType uint8

const (
	MessageDiscover        MessageType = 1
	MessageOffer           MessageType = 2
	MessageRequest         MessageType = 3
	MessageDecline         MessageType = 4
	MessageAck             MessageType = 5
	MessageNak             MessageType = 6
	MessageRelease         MessageType = 7
	MessageInform          MessageType = 8
	MessageForceRenew      MessageType = 9
	MessageLeaseQuery      MessageType = 10
	MessageLeaseUnassigned MessageType = 11
	MessageLeaseUnknown    MessageType = 12
	MessageLeaseActive     MessageType = 13
	MessageBulkLeaseQuery  MessageType = 14
	MessageLeaseQueryDone  MessageType = 15
)

var messageTypeNames = map[MessageType]string{
	MessageDiscover:        "Discover",
	MessageOffer:           "Offer",
	MessageRequest:         "Request",
	MessageDecline:         "Decline",
	MessageAck:             "Ack",
	MessageNak:             "Nak",
	MessageRelease:         "Release",
	MessageInform:          "Inform",
	MessageForceRenew:      "ForceRenew",
	MessageLeaseQuery:      "LeaseQuery",
	MessageLeaseUnassigned: "LeaseUnassigned",
	MessageLeaseUnknown:    "LeaseUnknown",
	MessageLeaseActive:     "LeaseActive",
	MessageBulkLeaseQuery:  "BulkLeaseQuery",
	MessageLeaseQueryDone:  "LeaseQueryDone",
}

func (m MessageType) Known() bool {
	_, ok := messageTypeNames[m]
	return ok
}

func (m MessageType) String() string {
	if name, ok := messageTypeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(%d)", uint8(m))
}

func (m MessageType) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

// NodeType is the NetBIOS over TCP/IP node type of option 46.
type NodeType uint8

const (
	NodeB NodeType = 0x1
	NodeP NodeType = 0x2
	NodeM NodeType = 0x4
	NodeH NodeType = 0x8
)

func (n NodeType) Known() bool {
	switch n {
	case NodeB, NodeP, NodeM, NodeH:
		return true
	}
	return false
}

func (n NodeType) String() string {
	switch n {
	case NodeB:
		return "B-node"
	case NodeP:
		return "P-node"
	case NodeM:
		return "M-node"
	case NodeH:
		return "H-node"
	}
	return fmt.Sprintf("NodeType(%d)", uint8(n))
}

func (n NodeType) MarshalJSON() ([]byte, error) { return json.Marshal(n.String()) }

// Overload says which BOOTP header fields carry additional options.
type Overload uint8

const (
	OverloadFile  Overload = 1
	OverloadSName Overload = 2
	OverloadBoth  Overload = 3
)

func (o Overload) Known() bool { return o >= OverloadFile && o <= OverloadBoth }

func (o Overload) File() bool  { return o == OverloadFile || o == OverloadBoth }
func (o Overload) SName() bool { return o == OverloadSName || o == OverloadBoth }

func (o Overload) String() string {
	switch o {
	case OverloadFile:
		return "file"
	case OverloadSName:
		return "sname"
	case OverloadBoth:
		return "file+sname"
	}
	return fmt.Sprintf("Overload(%d)", uint8(o))
}

func (o Overload) MarshalJSON() ([]byte, error) { return json.Marshal(o.String()) }
