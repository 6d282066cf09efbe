package options

import "fmt"

// Code is a top-level DHCP option tag.
type Code uint8

// Option codes from RFC 2132 (sections 3 to 9), RFC 2131, RFC 2132 section 9
// extensions and RFC 3046.
const (
	OptPad                        Code = 0
	OptSubnetMask                 Code = 1
	OptTimeOffset                 Code = 2
	OptRouter                     Code = 3
	OptTimeServer                 Code = 4
	OptNameServer                 Code = 5
	OptDomainNameServer           Code = 6
	OptLogServer                  Code = 7
	OptCookieServer               Code = 8
	OptLPRServer                  Code = 9
	OptImpressServer              Code = 10
	OptResourceLocationServer     Code = 11
	OptHostName                   Code = 12
	OptBootFileSize               Code = 13
	OptMeritDumpFile              Code = 14
	OptDomainName                 Code = 15
	OptSwapServer                 Code = 16
	OptRootPath                   Code = 17
	OptExtensionsPath             Code = 18
	OptIPForwarding               Code = 19
	OptNonLocalSourceRouting      Code = 20
	OptPolicyFilter               Code = 21
	OptMaxDatagramReassemblySize  Code = 22
	OptDefaultIPTTL               Code = 23
	OptPathMTUAgingTimeout        Code = 24
	OptPathMTUPlateauTable        Code = 25
	OptInterfaceMTU               Code = 26
	OptAllSubnetsAreLocal         Code = 27
	OptBroadcastAddress           Code = 28
	OptPerformMaskDiscovery       Code = 29
	OptMaskSupplier               Code = 30
	OptPerformRouterDiscovery     Code = 31
	OptRouterSolicitationAddress  Code = 32
	OptStaticRoute                Code = 33
	OptTrailerEncapsulation       Code = 34
	OptARPCacheTimeout            Code = 35
	OptEthernetEncapsulation      Code = 36
	OptTCPDefaultTTL              Code = 37
	OptTCPKeepaliveInterval       Code = 38
	OptTCPKeepaliveGarbage        Code = 39
	OptNISDomain                  Code = 40
	OptNISServers                 Code = 41
	OptNTPServers                 Code = 42
	OptVendorSpecific             Code = 43
	OptNetBIOSNameServers         Code = 44
	OptNetBIOSDatagramDistributor Code = 45
	OptNetBIOSNodeType            Code = 46
	OptNetBIOSScope               Code = 47
	OptXFontServer                Code = 48
	OptXDisplayManager            Code = 49
	OptRequestedIPAddress         Code = 50
	OptIPAddressLeaseTime         Code = 51
	OptOptionOverload             Code = 52
	OptMessageType                Code = 53
	OptServerIdentifier           Code = 54
	OptParamRequestList           Code = 55
	OptMessage                    Code = 56
	OptMaxMessageSize             Code = 57
	OptRenewalTime                Code = 58
	OptRebindingTime              Code = 59
	OptClassIdentifier            Code = 60
	OptClientIdentifier           Code = 61
	OptTFTPServerName             Code = 66
	OptBootFileName               Code = 67
	OptRelayAgentInformation      Code = 82
	OptEnd                        Code = 255
)

func (c Code) String() string {
	if e, ok := catalog[c]; ok {
		return e.name
	}
	switch c {
	case OptPad:
		return "Pad"
	case OptEnd:
		return "End"
	}
	return fmt.Sprintf("Unknown(%d)", uint8(c))
}

// SubCode is a Relay Agent Information sub-option tag.
type SubCode uint8

const (
	SubAgentCircuitID                SubCode = 1   // RFC 3046
	SubAgentRemoteID                 SubCode = 2   // RFC 3046
	SubDOCSISDeviceClass             SubCode = 4   // RFC 3256
	SubLinkSelection                 SubCode = 5   // RFC 3527
	SubSubscriberID                  SubCode = 6   // RFC 3993
	SubRADIUSAttributes              SubCode = 7   // RFC 4014
	SubAuthentication                SubCode = 8   // RFC 4030
	SubVendorSpecificInformation     SubCode = 9   // RFC 4243
	SubRelayAgentFlags               SubCode = 10  // RFC 5010
	SubServerIdentifierOverride      SubCode = 11  // RFC 5107
	SubVirtualSubnetSelection        SubCode = 151 // RFC 6607
	SubVirtualSubnetSelectionControl SubCode = 152 // RFC 6607
)

func (c SubCode) String() string {
	if e, ok := relayCatalog[c]; ok {
		return e.name
	}
	return fmt.Sprintf("Unknown(%d)", uint8(c))
}
