// Package options decodes the options region of a DHCP/BOOTP message.
//
// The region is a stream of tag|length|value records framed by single-byte
// Pad (0) and End (255) sentinels. Recognized tags are mapped to typed
// values through a closed catalog. Relay Agent Information (82) carries a
// nested stream of sub-options decoded with the same engine, without
// sentinels.
//
// Decoding never returns an error. Records with an unknown tag or a value
// that does not fit its shape are skipped and decoding resumes at the next
// record. A record whose length runs past the buffer stops decoding, and the
// options read so far are returned. Inspect exposes what was skipped and
// where decoding stopped.
package options
