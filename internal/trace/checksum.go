package trace

import "hash/crc32"

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Checksum computes the crc32c checksum used to protect event batches and
// blob chunks.
func Checksum(b []byte) uint32 {
	return crc32.Checksum(b, castagnoli)
}
