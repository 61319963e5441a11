// ABOUTME: Test helpers building small in-memory sound files
// ABOUTME: Writes canonical WAV and AIFF containers for decoder tests
package decode

import (
	"bytes"
	"encoding/binary"
	"math/bits"
)

// wavBytes builds a canonical 44-byte-header PCM WAV file
func wavBytes(sampleRate, channels, bitDepth int, samples []int) []byte {
	bps := bitDepth / 8
	dataSize := len(samples) * bps

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+dataSize))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate*channels*bps))
	binary.Write(&b, binary.LittleEndian, uint16(channels*bps))
	binary.Write(&b, binary.LittleEndian, uint16(bitDepth))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(dataSize))

	for _, s := range samples {
		switch bps {
		case 1:
			b.WriteByte(byte(s))
		case 2:
			binary.Write(&b, binary.LittleEndian, int16(s))
		case 3:
			b.Write([]byte{byte(s), byte(s >> 8), byte(s >> 16)})
		}
	}
	return b.Bytes()
}

// aiffBytes builds a 16-bit AIFF file with COMM and SSND chunks
func aiffBytes(sampleRate, channels int, samples []int16) []byte {
	frames := len(samples) / channels
	ssndSize := 8 + len(samples)*2

	var b bytes.Buffer
	b.WriteString("FORM")
	binary.Write(&b, binary.BigEndian, uint32(4+8+18+8+ssndSize))
	b.WriteString("AIFF")

	b.WriteString("COMM")
	binary.Write(&b, binary.BigEndian, uint32(18))
	binary.Write(&b, binary.BigEndian, uint16(channels))
	binary.Write(&b, binary.BigEndian, uint32(frames))
	binary.Write(&b, binary.BigEndian, uint16(16))
	b.Write(extended80(sampleRate))

	b.WriteString("SSND")
	binary.Write(&b, binary.BigEndian, uint32(ssndSize))
	binary.Write(&b, binary.BigEndian, uint32(0))
	binary.Write(&b, binary.BigEndian, uint32(0))
	for _, s := range samples {
		binary.Write(&b, binary.BigEndian, s)
	}
	return b.Bytes()
}

// extended80 encodes a positive integer as an IEEE 754 80-bit extended float
func extended80(v int) []byte {
	msb := bits.Len64(uint64(v)) - 1
	out := make([]byte, 10)
	binary.BigEndian.PutUint16(out[0:], uint16(16383+msb))
	binary.BigEndian.PutUint64(out[2:], uint64(v)<<(63-msb))
	return out
}

func le16(values ...int16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
