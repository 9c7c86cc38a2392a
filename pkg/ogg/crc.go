package ogg

// Ogg page CRC-32, polynomial 0x04C11DB7, reflected table, initial value 0.
//
// This is not the IEEE CRC-32 from hash/crc32 (different table construction
// and no final XOR), so the table is built here once at package load.

var crcTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := range crcTable {
		crc := uint32(i)
		for j := 0; j < 8; j++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		crcTable[i] = crc
	}
}

// checksum computes the page checksum over the given byte sequences,
// treated as one contiguous stream: header (with the checksum field
// zeroed), segment table, then payload.
func checksum(parts ...[]byte) uint32 {
	var crc uint32
	for _, p := range parts {
		for _, b := range p {
			crc = (crc >> 8) ^ crcTable[byte(crc)^b]
		}
	}
	return crc
}
