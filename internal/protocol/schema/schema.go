package schema

import (
	"fmt"

	"github.com/danmuck/dhcpopt/internal/protocol/options"
	"github.com/rs/zerolog/log"
)

const (
	ReasonMissingMessageType = "missing message type"
	ReasonMissingRequired    = "missing required option"
	ReasonForbidden          = "option not allowed"
)

// Requirement lists what one message type must and must not carry
// (RFC 2131 tables 3 and 5). State-dependent rows are left out.
type Requirement struct {
	Required  []options.Code
	Forbidden []options.Code
}

type ValidationError struct {
	MessageType options.MessageType
	Code        options.Code
	Reason      string
}

func (e ValidationError) Error() string {
	if e.MessageType == 0 {
		return fmt.Sprintf("schema: %s", e.Reason)
	}
	if e.Code == options.OptPad {
		return fmt.Sprintf("schema: message_type=%s: %s", e.MessageType, e.Reason)
	}
	return fmt.Sprintf("schema: message_type=%s option=%s(%d): %s", e.MessageType, e.Code, uint8(e.Code), e.Reason)
}

var requirements = map[options.MessageType]Requirement{
	options.MessageDiscover: {
		Forbidden: []options.Code{options.OptServerIdentifier},
	},
	options.MessageInform: {
		Forbidden: []options.Code{
			options.OptRequestedIPAddress,
			options.OptIPAddressLeaseTime,
			options.OptServerIdentifier,
		},
	},
	options.MessageDecline: {
		Required: []options.Code{options.OptRequestedIPAddress, options.OptServerIdentifier},
		Forbidden: []options.Code{
			options.OptIPAddressLeaseTime,
			options.OptOptionOverload,
			options.OptClassIdentifier,
			options.OptParamRequestList,
			options.OptMaxMessageSize,
		},
	},
	options.MessageRelease: {
		Required: []options.Code{options.OptServerIdentifier},
		Forbidden: []options.Code{
			options.OptRequestedIPAddress,
			options.OptIPAddressLeaseTime,
			options.OptOptionOverload,
			options.OptClassIdentifier,
			options.OptParamRequestList,
			options.OptMaxMessageSize,
		},
	},
	options.MessageOffer: {
		Required: []options.Code{options.OptIPAddressLeaseTime, options.OptServerIdentifier},
		Forbidden: []options.Code{
			options.OptRequestedIPAddress,
			options.OptParamRequestList,
			options.OptClientIdentifier,
			options.OptMaxMessageSize,
		},
	},
	options.MessageAck: {
		Required: []options.Code{options.OptServerIdentifier},
		Forbidden: []options.Code{
			options.OptRequestedIPAddress,
			options.OptParamRequestList,
			options.OptClientIdentifier,
			options.OptMaxMessageSize,
		},
	},
	options.MessageNak: {
		Required: []options.Code{options.OptServerIdentifier},
		Forbidden: []options.Code{
			options.OptRequestedIPAddress,
			options.OptIPAddressLeaseTime,
			options.OptOptionOverload,
			options.OptParamRequestList,
			options.OptMaxMessageSize,
		},
	},
}

// RequirementFor returns the table row for mt. Message types without a row
// are not checked beyond carrying option 53.
func RequirementFor(mt options.MessageType) (Requirement, bool) {
	r, ok := requirements[mt]
	return r, ok
}

// Validate checks decoded options against the per-message-type option
// tables. Options outside the tables are ignored.
func Validate(opts []options.Option) error {
	mt, ok := options.MessageTypeOf(opts)
	if !ok {
		log.Error().Msg("schema.Validate missing message type")
		return ValidationError{Reason: ReasonMissingMessageType}
	}
	log.Debug().Msgf("schema.Validate message_type=%s options=%d", mt, len(opts))
	req, ok := requirements[mt]
	if !ok {
		log.Debug().Msgf("schema.Validate no table message_type=%s", mt)
		return nil
	}
	for _, code := range req.Required {
		if _, found := options.Find(opts, code); !found {
			log.Error().Msgf("schema.Validate missing option message_type=%s code=%d", mt, code)
			return ValidationError{MessageType: mt, Code: code, Reason: ReasonMissingRequired}
		}
	}
	for _, code := range req.Forbidden {
		if _, found := options.Find(opts, code); found {
			log.Error().Msgf("schema.Validate forbidden option message_type=%s code=%d", mt, code)
			return ValidationError{MessageType: mt, Code: code, Reason: ReasonForbidden}
		}
	}
	log.Info().Msgf("schema.Validate ok message_type=%s", mt)
	return nil
}
