package cpu

// EncodeWord encodes a value as a little-endian memory word.
// Values that do not fit in 16 bits are silently truncated.
func EncodeWord(value uint32) [WORD_SIZE]byte {
	return [WORD_SIZE]byte{byte(value % 256), byte((value / 256) % 256)}
}

// DecodeWord decodes a little-endian memory word.
func DecodeWord(word [WORD_SIZE]byte) uint32 {
	return uint32(word[0]) + uint32(word[1])*256
}
