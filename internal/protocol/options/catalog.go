package options

import (
	"sort"

	"github.com/danmuck/dhcpopt/internal/protocol/codec"
)

// Shape names the wire layout of an option value.
type Shape string

const (
	ShapeSentinel   Shape = "sentinel"
	ShapeUint8      Shape = "u8"
	ShapeUint16     Shape = "u16"
	ShapeUint32     Shape = "u32"
	ShapeInt32      Shape = "i32"
	ShapeBool       Shape = "bool"
	ShapeString     Shape = "string"
	ShapeBytes      Shape = "blob"
	ShapeIPv4       Shape = "ipv4"
	ShapeIPv4List   Shape = "ipv4-list"
	ShapeIPv4Pairs  Shape = "ipv4-pairs"
	ShapeUint16List Shape = "u16-list"
	ShapeCodeList   Shape = "code-list"
	ShapeEnum       Shape = "enum"
	ShapeNested     Shape = "nested"
)

type decodeFunc func(value []byte) (Value, error)

type entry struct {
	name   string
	shape  Shape
	decode decodeFunc
}

var catalog = map[Code]entry{
	OptSubnetMask:                 {"SubnetMask", ShapeIPv4, decodeIP},
	OptTimeOffset:                 {"TimeOffset", ShapeInt32, decodeInt32},
	OptRouter:                     {"Router", ShapeIPv4List, decodeIPList},
	OptTimeServer:                 {"TimeServer", ShapeIPv4List, decodeIPList},
	OptNameServer:                 {"NameServer", ShapeIPv4List, decodeIPList},
	OptDomainNameServer:           {"DomainNameServer", ShapeIPv4List, decodeIPList},
	OptLogServer:                  {"LogServer", ShapeIPv4List, decodeIPList},
	OptCookieServer:               {"CookieServer", ShapeIPv4List, decodeIPList},
	OptLPRServer:                  {"LPRServer", ShapeIPv4List, decodeIPList},
	OptImpressServer:              {"ImpressServer", ShapeIPv4List, decodeIPList},
	OptResourceLocationServer:     {"ResourceLocationServer", ShapeIPv4List, decodeIPList},
	OptHostName:                   {"HostName", ShapeString, decodeText},
	OptBootFileSize:               {"BootFileSize", ShapeUint16, decodeUint16},
	OptMeritDumpFile:              {"MeritDumpFile", ShapeString, decodeText},
	OptDomainName:                 {"DomainName", ShapeString, decodeText},
	OptSwapServer:                 {"SwapServer", ShapeIPv4, decodeIP},
	OptRootPath:                   {"RootPath", ShapeString, decodeText},
	OptExtensionsPath:             {"ExtensionsPath", ShapeString, decodeText},
	OptIPForwarding:               {"IPForwarding", ShapeBool, decodeBool},
	OptNonLocalSourceRouting:      {"NonLocalSourceRouting", ShapeBool, decodeBool},
	OptPolicyFilter:               {"PolicyFilter", ShapeIPv4Pairs, decodeIPPairs},
	OptMaxDatagramReassemblySize:  {"MaxDatagramReassemblySize", ShapeUint16, decodeUint16},
	OptDefaultIPTTL:               {"DefaultIPTTL", ShapeUint8, decodeUint8},
	OptPathMTUAgingTimeout:        {"PathMTUAgingTimeout", ShapeUint32, decodeUint32},
	OptPathMTUPlateauTable:        {"PathMTUPlateauTable", ShapeUint16List, decodeUint16List},
	OptInterfaceMTU:               {"InterfaceMTU", ShapeUint16, decodeUint16},
	OptAllSubnetsAreLocal:         {"AllSubnetsAreLocal", ShapeBool, decodeBool},
	OptBroadcastAddress:           {"BroadcastAddress", ShapeIPv4, decodeIP},
	OptPerformMaskDiscovery:       {"PerformMaskDiscovery", ShapeBool, decodeBool},
	OptMaskSupplier:               {"MaskSupplier", ShapeBool, decodeBool},
	OptPerformRouterDiscovery:     {"PerformRouterDiscovery", ShapeBool, decodeBool},
	OptRouterSolicitationAddress:  {"RouterSolicitationAddress", ShapeIPv4, decodeIP},
	OptStaticRoute:                {"StaticRoute", ShapeIPv4Pairs, decodeIPPairs},
	OptTrailerEncapsulation:       {"TrailerEncapsulation", ShapeBool, decodeBool},
	OptARPCacheTimeout:            {"ARPCacheTimeout", ShapeUint32, decodeUint32},
	OptEthernetEncapsulation:      {"EthernetEncapsulation", ShapeBool, decodeBool},
	OptTCPDefaultTTL:              {"TCPDefaultTTL", ShapeUint8, decodeUint8},
	OptTCPKeepaliveInterval:       {"TCPKeepaliveInterval", ShapeUint32, decodeUint32},
	OptTCPKeepaliveGarbage:        {"TCPKeepaliveGarbage", ShapeBool, decodeBool},
	OptNISDomain:                  {"NISDomain", ShapeString, decodeText},
	OptNISServers:                 {"NISServers", ShapeIPv4List, decodeIPList},
	OptNTPServers:                 {"NTPServers", ShapeIPv4List, decodeIPList},
	OptVendorSpecific:             {"VendorSpecific", ShapeBytes, decodeBytes},
	OptNetBIOSNameServers:         {"NetBIOSNameServers", ShapeIPv4List, decodeIPList},
	OptNetBIOSDatagramDistributor: {"NetBIOSDatagramDistributor", ShapeIPv4List, decodeIPList},
	OptNetBIOSNodeType:            {"NetBIOSNodeType", ShapeEnum, decodeNodeType},
	OptNetBIOSScope:               {"NetBIOSScope", ShapeString, decodeText},
	OptXFontServer:                {"XFontServer", ShapeIPv4List, decodeIPList},
	OptXDisplayManager:            {"XDisplayManager", ShapeIPv4List, decodeIPList},
	OptRequestedIPAddress:         {"RequestedIPAddress", ShapeIPv4, decodeIP},
	OptIPAddressLeaseTime:         {"IPAddressLeaseTime", ShapeUint32, decodeUint32},
	OptOptionOverload:             {"OptionOverload", ShapeEnum, decodeOverload},
	OptMessageType:                {"MessageType", ShapeEnum, decodeMessageType},
	OptServerIdentifier:           {"ServerIdentifier", ShapeIPv4, decodeIP},
	OptParamRequestList:           {"ParamRequestList", ShapeCodeList, decodeCodeList},
	OptMessage:                    {"Message", ShapeString, decodeText},
	OptMaxMessageSize:             {"MaxMessageSize", ShapeUint16, decodeUint16},
	OptRenewalTime:                {"RenewalTime", ShapeUint32, decodeUint32},
	OptRebindingTime:              {"RebindingTime", ShapeUint32, decodeUint32},
	OptClassIdentifier:            {"ClassIdentifier", ShapeString, decodeText},
	OptClientIdentifier:           {"ClientIdentifier", ShapeBytes, decodeBytes},
	OptTFTPServerName:             {"TFTPServerName", ShapeString, decodeText},
	OptBootFileName:               {"BootFileName", ShapeString, decodeText},
	OptRelayAgentInformation:      {"RelayAgentInformation", ShapeNested, decodeRelay},
}

var relayCatalog = map[SubCode]entry{
	SubAgentCircuitID:                {"AgentCircuitID", ShapeBytes, decodeBytes},
	SubAgentRemoteID:                 {"AgentRemoteID", ShapeBytes, decodeBytes},
	SubDOCSISDeviceClass:             {"DOCSISDeviceClass", ShapeInt32, decodeInt32},
	SubLinkSelection:                 {"LinkSelection", ShapeIPv4, decodeIP},
	SubSubscriberID:                  {"SubscriberID", ShapeString, decodeText},
	SubRADIUSAttributes:              {"RADIUSAttributes", ShapeBytes, decodeBytes},
	SubAuthentication:                {"Authentication", ShapeBytes, decodeBytes},
	SubVendorSpecificInformation:     {"VendorSpecificInformation", ShapeBytes, decodeBytes},
	SubRelayAgentFlags:               {"RelayAgentFlags", ShapeUint8, decodeUint8},
	SubServerIdentifierOverride:      {"ServerIdentifierOverride", ShapeInt32, decodeInt32},
	SubVirtualSubnetSelection:        {"VirtualSubnetSelection", ShapeBytes, decodeBytes},
	SubVirtualSubnetSelectionControl: {"VirtualSubnetSelectionControl", ShapeBytes, decodeBytes},
}

// CatalogEntry describes one recognized tag.
type CatalogEntry struct {
	Code  uint8  `json:"code"`
	Name  string `json:"name"`
	Shape Shape  `json:"shape"`
}

// Catalog lists the top-level options in code order, sentinels included.
func Catalog() []CatalogEntry {
	out := []CatalogEntry{
		{Code: uint8(OptPad), Name: "Pad", Shape: ShapeSentinel},
		{Code: uint8(OptEnd), Name: "End", Shape: ShapeSentinel},
	}
	for code, e := range catalog {
		out = append(out, CatalogEntry{Code: uint8(code), Name: e.name, Shape: e.shape})
	}
	sortEntries(out)
	return out
}

// RelayCatalog lists the Relay Agent Information sub-options in code order.
func RelayCatalog() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(relayCatalog))
	for code, e := range relayCatalog {
		out = append(out, CatalogEntry{Code: uint8(code), Name: e.name, Shape: e.shape})
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []CatalogEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
}

func decodeUint8(b []byte) (Value, error) {
	v, err := codec.Uint8(b)
	if err != nil {
		return nil, err
	}
	return Uint8(v), nil
}

func decodeUint16(b []byte) (Value, error) {
	v, err := codec.Uint16(b)
	if err != nil {
		return nil, err
	}
	return Uint16(v), nil
}

func decodeUint32(b []byte) (Value, error) {
	v, err := codec.Uint32(b)
	if err != nil {
		return nil, err
	}
	return Uint32(v), nil
}

func decodeInt32(b []byte) (Value, error) {
	v, err := codec.Int32(b)
	if err != nil {
		return nil, err
	}
	return Int32(v), nil
}

func decodeBool(b []byte) (Value, error) {
	v, err := codec.Bool(b)
	if err != nil {
		return nil, err
	}
	return Bool(v), nil
}

func decodeText(b []byte) (Value, error) {
	v, err := codec.String(b)
	if err != nil {
		return nil, err
	}
	return Text(v), nil
}

func decodeBytes(b []byte) (Value, error) {
	return Bytes(codec.Bytes(b)), nil
}

func decodeIP(b []byte) (Value, error) {
	v, err := codec.IPv4(b)
	if err != nil {
		return nil, err
	}
	return IP(v), nil
}

func decodeIPList(b []byte) (Value, error) {
	v, err := codec.IPv4List(b)
	if err != nil {
		return nil, err
	}
	return IPList(v), nil
}

func decodeIPPairs(b []byte) (Value, error) {
	v, err := codec.IPv4Pairs(b)
	if err != nil {
		return nil, err
	}
	return IPPairs(v), nil
}

func decodeUint16List(b []byte) (Value, error) {
	v, err := codec.Uint16List(b)
	if err != nil {
		return nil, err
	}
	return Uint16List(v), nil
}

func decodeCodeList(b []byte) (Value, error) {
	out := make(CodeList, 0, len(b))
	for _, c := range b {
		out = append(out, Code(c))
	}
	return out, nil
}

func decodeMessageType(b []byte) (Value, error) {
	v, err := codec.Enum(b, MessageType.Known)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeNodeType(b []byte) (Value, error) {
	v, err := codec.Enum(b, NodeType.Known)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeOverload(b []byte) (Value, error) {
	v, err := codec.Enum(b, Overload.Known)
	if err != nil {
		return nil, err
	}
	return v, nil
}
