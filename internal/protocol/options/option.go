package options

import "encoding/json"

// Option is one decoded top-level option. Pad and End carry a nil Value.
type Option struct {
	Code  Code
	Value Value
}

func (o Option) IsSentinel() bool { return o.Code == OptPad || o.Code == OptEnd }

func (o Option) String() string {
	if o.Value == nil {
		return o.Code.String()
	}
	return o.Code.String() + "(" + o.Value.String() + ")"
}

func (o Option) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code  uint8  `json:"code"`
		Name  string `json:"name"`
		Value Value  `json:"value,omitempty"`
	}{uint8(o.Code), o.Code.String(), o.Value})
}

// SubOption is one decoded Relay Agent Information sub-option.
type SubOption struct {
	Code  SubCode
	Value Value
}

func (s SubOption) String() string {
	return s.Code.String() + "(" + s.Value.String() + ")"
}

func (s SubOption) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code  uint8  `json:"code"`
		Name  string `json:"name"`
		Value Value  `json:"value"`
	}{uint8(s.Code), s.Code.String(), s.Value})
}

// Find returns the first option with the given code.
func Find(opts []Option, code Code) (Option, bool) {
	for _, o := range opts {
		if o.Code == code {
			return o, true
		}
	}
	return Option{}, false
}

// MessageTypeOf returns the value of option 53, if present.
func MessageTypeOf(opts []Option) (MessageType, bool) {
	o, ok := Find(opts, OptMessageType)
	if !ok {
		return 0, false
	}
	mt, ok := o.Value.(MessageType)
	return mt, ok
}

// OverloadOf returns the value of option 52, if present.
func OverloadOf(opts []Option) (Overload, bool) {
	o, ok := Find(opts, OptOptionOverload)
	if !ok {
		return 0, false
	}
	ov, ok := o.Value.(Overload)
	return ov, ok
}
