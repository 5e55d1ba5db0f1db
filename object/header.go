package object

import "encoding/binary"

// nlzTable is the de Bruijn lookup table nlz indexes into. Unreachable
// slots (values the smear-then-multiply sequence never produces for a
// real bit-length query) are -1.
var nlzTable = [64]int{
	0, 1, -1, 16, -1, 2, 29, -1, 17, -1, -1, -1, 3, 22, 30, -1,
	-1, -1, 20, 18, 11, -1, 13, -1, -1, 4, -1, 7, -1, 23, 31, -1,
	15, -1, 28, -1, -1, -1, 21, -1, 19, 10, 12, -1, 6, -1, -1, 14,
	27, -1, -1, 9, -1, 5, -1, 26, -1, 8, 25, -1, 24, -1, 32, -1,
}

// nlz returns the number of bits needed to represent x (0 for x==0), via
// the smear-and-multiply bit trick instead of a loop. x is a 32-bit
// value, so ids or lengths at or beyond 2^32 are not correctly sized.
func nlz(x uint32) int {
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x *= 0x06EB14F9
	return nlzTable[x>>26]
}

// unpackHeader1 decodes the first header byte into the id/length field
// widths (in bits) and the record Kind. A zero-valued length or id field
// means "32", and the two are jointly re-aligned to a whole byte
// boundary.
func unpackHeader1(b byte) (idSize, lengthSize int, kind Kind) {
	kind = Kind(b & 3)
	lengthSize = int(b & 28)
	if lengthSize == 0 {
		lengthSize = 32
	}
	idSize = int(b&224) >> 3
	if idSize == 0 {
		idSize = 32
	}
	if (idSize+lengthSize)&7 != 0 {
		idSize += 2
		lengthSize += 2
	}
	return idSize, lengthSize, kind
}

// unpackHeader2 decodes the id and length fields from data[offset:],
// reading up to 8 bytes (zero-padding short input).
func unpackHeader2(data []byte, idSize, lengthSize, offset int) (id, length uint64) {
	var window [8]byte
	if offset < len(data) {
		copy(window[:], data[offset:])
	}
	word := binary.BigEndian.Uint64(window[:])
	id = word >> (64 - idSize)
	length = (word >> (64 - idSize - lengthSize)) & ((1 << uint(lengthSize)) - 1)
	return id, length
}

// marshalHeader packs (id, kind, length) into the variable-width header:
// a leading byte encoding the id/length field widths and the Kind,
// followed by as many bytes of a big-endian 64-bit word as the two
// fields require.
func marshalHeader(id uint64, kind Kind, length uint64) []byte {
	idSize := nlz(uint32(id))
	lengthSize := nlz(uint32(length))

	if idSize < 4 {
		idSize = 4
	}
	if lengthSize < 4 {
		lengthSize = 4
	}
	if idSize&1 != 0 {
		idSize++
	}
	if lengthSize&1 != 0 {
		lengthSize++
	}

	if idSize&3 != 0 {
		if lengthSize&3 == 0 {
			idSize += 2
		}
	} else if lengthSize&3 != 0 {
		lengthSize += 2
	}

	if (idSize+lengthSize)&7 != 0 {
		idSize += 2
		lengthSize += 2
	}

	var word uint64
	word |= id << uint(64-idSize)
	word |= length << uint(64-idSize-lengthSize)

	headerByte := byte(((idSize<<3)&224)|(lengthSize&28)) | byte(kind)

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], word)

	totalBytes := (idSize + lengthSize) >> 3
	out := make([]byte, 1+totalBytes)
	out[0] = headerByte
	copy(out[1:], buf[:totalBytes])
	return out
}

// parseHeader decodes a complete header starting at data[0].
func parseHeader(data []byte) Header {
	idSize, lengthSize, kind := unpackHeader1(data[0])
	id, length := unpackHeader2(data, idSize, lengthSize, 1)
	return Header{ID: id, Kind: kind, Length: length}
}
