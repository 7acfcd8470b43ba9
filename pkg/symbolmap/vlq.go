package symbolmap

import "strings"

// base64VLQChars is the Source Map v3 base64 alphabet, used to encode
// each 6-bit VLQ digit.
const base64VLQChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeVLQ appends the variable-length-quantity base64 encoding of a
// single signed value to b, per the Source Map v3 mappings format: the
// sign occupies the low bit, and every 5-bit group after the first
// carries a continuation bit (0x20) until no bits remain.
func encodeVLQ(b *strings.Builder, value int) {
	v := value << 1
	if value < 0 {
		v = (-value << 1) | 1
	}
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		b.WriteByte(base64VLQChars[digit])
		if v == 0 {
			break
		}
	}
}

// encodeVLQSegment encodes a full mapping segment (a sequence of
// signed field deltas) as a comma-free run of VLQ digits.
func encodeVLQSegment(fields []int) string {
	var b strings.Builder
	for _, f := range fields {
		encodeVLQ(&b, f)
	}
	return b.String()
}
