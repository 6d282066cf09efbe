package tlv

import (
	"errors"
	"fmt"
)

// HeaderLen is the tag byte plus the length byte of a length-bearing record.
const HeaderLen = 2

// Sentinel tags. They occupy a single byte and carry no length field.
const (
	TagPad uint8 = 0
	TagEnd uint8 = 255
)

var (
	ErrTruncated         = errors.New("tlv: truncated record")
	ErrShortRecordHeader = fmt.Errorf("%w: short record header", ErrTruncated)
	ErrShortRecordValue  = fmt.Errorf("%w: short record value", ErrTruncated)
)

// DecodeFunc decodes the value of one record. value holds exactly the bytes
// announced by the record's length field and aliases the scanned buffer.
type DecodeFunc[T any] func(tag uint8, value []byte) (T, error)

// Config parametrizes Scan for one catalog.
type Config[T any] struct {
	// Sentinels enables single-byte Pad/End handling. When false every tag,
	// including 0 and 255, is a length-bearing record.
	Sentinels bool
	// Sentinel builds the item emitted for a Pad or End byte.
	Sentinel func(tag uint8) T
	Decode   DecodeFunc[T]
}

// Skip describes one record dropped by resynchronization.
type Skip struct {
	Offset int
	Tag    uint8
	Length uint8
	Err    error
}

func (s Skip) String() string {
	return fmt.Sprintf("offset=%d tag=%d len=%d: %v", s.Offset, s.Tag, s.Length, s.Err)
}

// Result is the outcome of one Scan.
type Result[T any] struct {
	Items []T
	// Offsets holds the start of the record each item was decoded from.
	Offsets []int
	// Consumed is the number of bytes the scan advanced over.
	Consumed int
	Skipped  []Skip
	// Ended reports that an End sentinel stopped the scan.
	Ended bool
	// Err is the terminal truncation error, nil when the scan ran to the end
	// of the buffer or hit End.
	Err error
}

// Scan walks buf as a stream of tag|length|value records. Records whose
// value fails to decode are skipped and the scan resumes at the next record;
// a record whose header or value runs past the end of buf stops the scan.
func Scan[T any](buf []byte, cfg Config[T]) Result[T] {
	res := Result[T]{Items: make([]T, 0), Offsets: make([]int, 0)}
	pos := 0
	for pos < len(buf) {
		tag := buf[pos]
		if cfg.Sentinels && (tag == TagPad || tag == TagEnd) {
			res.Items = append(res.Items, cfg.Sentinel(tag))
			res.Offsets = append(res.Offsets, pos)
			pos++
			if tag == TagEnd {
				res.Ended = true
				break
			}
			continue
		}
		if len(buf)-pos < HeaderLen {
			res.Err = ErrShortRecordHeader
			break
		}
		length := buf[pos+1]
		// int is at least 32 bits wide, so pos+2+255 cannot wrap.
		end := pos + HeaderLen + int(length)
		if end > len(buf) {
			res.Err = ErrShortRecordValue
			break
		}
		item, err := cfg.Decode(tag, buf[pos+HeaderLen:end])
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Offset: pos, Tag: tag, Length: length, Err: err})
		} else {
			res.Items = append(res.Items, item)
			res.Offsets = append(res.Offsets, pos)
		}
		pos = end
	}
	res.Consumed = pos
	return res
}
