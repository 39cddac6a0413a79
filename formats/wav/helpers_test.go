// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
)

// chunk is an extra RIFF chunk inserted by createWAVFile.
type chunk struct {
	id   string
	body []byte
}

// createWAVFile builds a WAV file by hand. Extra chunks are written between
// the fmt and data chunks, padded to an even length as RIFF requires.
func createWAVFile(sampleRate, channels, bitsPerSample int, samples []int16, extra ...chunk) []byte {
	buf := new(bytes.Buffer)

	numChannels := uint16(channels)
	bits := uint16(bitsPerSample)
	byteRate := uint32(sampleRate) * uint32(numChannels) * uint32(bits/8)
	blockAlign := uint16(numChannels) * uint16(bits/8)
	dataSize := uint32(len(samples) * 2)

	body := new(bytes.Buffer)
	body.WriteString("WAVE")

	body.WriteString("fmt ")
	binary.Write(body, binary.LittleEndian, uint32(16))
	binary.Write(body, binary.LittleEndian, uint16(1))
	binary.Write(body, binary.LittleEndian, numChannels)
	binary.Write(body, binary.LittleEndian, uint32(sampleRate))
	binary.Write(body, binary.LittleEndian, byteRate)
	binary.Write(body, binary.LittleEndian, blockAlign)
	binary.Write(body, binary.LittleEndian, bits)

	for _, c := range extra {
		body.WriteString(c.id)
		binary.Write(body, binary.LittleEndian, uint32(len(c.body)))
		body.Write(c.body)
		if len(c.body)%2 == 1 {
			body.WriteByte(0)
		}
	}

	body.WriteString("data")
	binary.Write(body, binary.LittleEndian, dataSize)
	for _, s := range samples {
		binary.Write(body, binary.LittleEndian, s)
	}

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(body.Len()))
	buf.Write(body.Bytes())

	return buf.Bytes()
}

// ramp returns n samples counting up from zero.
func ramp(n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(i)
	}
	return s
}
