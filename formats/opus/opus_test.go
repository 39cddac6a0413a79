// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/codec"
	"github.com/ik5/voxedit/formats/ogg"
)

func TestHeadRoundTrip(t *testing.T) {
	h := Head{Channels: 2, PreSkip: 312, InputSampleRate: 16000, OutputGain: -256}
	b := h.Bytes()
	if len(b) != headSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(b), headSize)
	}

	got, err := ParseHead(b)
	if err != nil {
		t.Fatalf("ParseHead() error = %v", err)
	}
	h.Version = 1
	if got != h {
		t.Errorf("ParseHead() = %+v, want %+v", got, h)
	}
}

func TestParseHeadErrors(t *testing.T) {
	valid := Head{Channels: 1, InputSampleRate: 48000}.Bytes()

	mapped := append([]byte(nil), valid...)
	mapped[18] = 1
	zeroCh := append([]byte(nil), valid...)
	zeroCh[9] = 0
	future := append([]byte(nil), valid...)
	future[8] = 0x10

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", valid[:10], ErrNotOpus},
		{"magic", append([]byte("OpusHeaX"), valid[8:]...), ErrNotOpus},
		{"mapping", mapped, ErrUnsupportedMap},
		{"channels", zeroCh, ErrBadHead},
		{"version", future, ErrBadHead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseHead(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("ParseHead() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTagsPacket(t *testing.T) {
	p := TagsPacket("abc")
	if !isTags(p) {
		t.Fatal("isTags(TagsPacket()) = false")
	}
	if len(p) != 8+4+3+4 {
		t.Errorf("len = %d, want 19", len(p))
	}
}

func TestPacketSamples(t *testing.T) {
	tests := []struct {
		name   string
		packet []byte
		want   int
	}{
		{"SILK NB 10ms", []byte{0 << 3}, 480},
		{"SILK WB 60ms", []byte{11 << 3}, 2880},
		{"Hybrid FB 20ms", []byte{15 << 3}, 960},
		{"CELT 2.5ms", []byte{16 << 3}, 120},
		{"CELT FB 20ms stereo", []byte{31<<3 | 0x04}, 960},
		{"two frames", []byte{31<<3 | 1}, 1920},
		{"code 3, 6 frames", []byte{31<<3 | 3, 6}, 5760},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PacketSamples(tt.packet)
			if err != nil {
				t.Fatalf("PacketSamples() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PacketSamples() = %d, want %d", got, tt.want)
			}
		})
	}

	bad := [][]byte{
		nil,
		{31<<3 | 3},
		{31<<3 | 3, 0},
		{31<<3 | 3, 7}, // 140 ms
	}
	for _, p := range bad {
		if _, err := PacketSamples(p); !errors.Is(err, audio.ErrMalformedHeader) {
			t.Errorf("PacketSamples(%v) error = %v, want ErrMalformedHeader", p, err)
		}
	}
}

func TestMuxerExtractorRoundTrip(t *testing.T) {
	packets := [][]byte{
		{31 << 3, 0xAA, 0xBB},
		{31 << 3, 0xCC},
		{31<<3 | 1, 0xDD, 0xEE},
	}

	var buf bytes.Buffer
	m := NewMuxer(&buf, 42)
	track, err := m.AddTrack(codec.MediaFormat{MIME: MIME, SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	for _, p := range packets {
		if err := m.WriteSampleData(track, p, codec.BufferInfo{Size: len(p)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Stop(); err != nil {
		t.Fatal(err)
	}
	if m.Granule() != 960+960+1920 {
		t.Errorf("Granule() = %d, want 3840", m.Granule())
	}

	ex, err := NewExtractor(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	if ex.Head().InputSampleRate != 16000 {
		t.Errorf("InputSampleRate = %d, want 16000", ex.Head().InputSampleRate)
	}

	format, err := ex.TrackFormat(0)
	if err != nil {
		t.Fatal(err)
	}
	if format.MIME != MIME || format.SampleRate != 16000 || format.Channels != 1 {
		t.Errorf("TrackFormat() = %+v", format)
	}
	if format.DurationUs != 80_000 {
		t.Errorf("DurationUs = %d, want 80000", format.DurationUs)
	}
	if len(format.CSD) != 1 {
		t.Fatalf("CSD entries = %d, want 1", len(format.CSD))
	}

	if err := ex.SelectTrack(0); err != nil {
		t.Fatal(err)
	}
	dst := make([]byte, format.MaxInputSize)
	wantTimes := []int64{0, 20_000, 40_000}
	for i, want := range packets {
		n, err := ex.ReadSample(dst)
		if err != nil {
			t.Fatalf("ReadSample(%d) error = %v", i, err)
		}
		if !bytes.Equal(dst[:n], want) {
			t.Errorf("packet %d = %v, want %v", i, dst[:n], want)
		}
		if ex.SampleTime() != wantTimes[i] {
			t.Errorf("SampleTime(%d) = %d, want %d", i, ex.SampleTime(), wantTimes[i])
		}
		ex.Advance()
	}
	if _, err := ex.ReadSample(dst); !errors.Is(err, io.EOF) {
		t.Errorf("ReadSample() at end error = %v, want EOF", err)
	}
}

func TestMuxerEmptyStream(t *testing.T) {
	var buf bytes.Buffer
	m := NewMuxer(&buf, 1)
	if _, err := m.AddTrack(codec.MediaFormat{MIME: MIME, SampleRate: 48000, Channels: 2}); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	if err := m.Stop(); err != nil {
		t.Fatal(err)
	}

	ex, err := NewExtractor(&buf)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	if ex.Samples() != 0 {
		t.Errorf("Samples() = %d, want 0", ex.Samples())
	}
}

func TestMuxerState(t *testing.T) {
	m := NewMuxer(io.Discard, 1)
	if err := m.Start(); !errors.Is(err, ErrMuxerState) {
		t.Errorf("Start() without track error = %v", err)
	}
	if _, err := m.AddTrack(codec.MediaFormat{MIME: "audio/mp4a-latm"}); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("AddTrack(aac) error = %v", err)
	}
	if _, err := m.AddTrack(codec.MediaFormat{MIME: MIME, Channels: 1, SampleRate: 48000}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddTrack(codec.MediaFormat{MIME: MIME, Channels: 1}); !errors.Is(err, ErrTrackCount) {
		t.Errorf("second AddTrack() error = %v", err)
	}
	if err := m.WriteSampleData(0, []byte{31 << 3}, codec.BufferInfo{}); !errors.Is(err, ErrMuxerState) {
		t.Errorf("WriteSampleData() before Start error = %v", err)
	}
}

func TestExtractorPreSkip(t *testing.T) {
	var buf bytes.Buffer
	w := ogg.NewWriter(&buf, 9)
	head := Head{Channels: 1, PreSkip: 480, InputSampleRate: 48000}
	if err := w.WritePacket(head.Bytes(), 0, ogg.FlagBOS); err != nil {
		t.Fatal(err)
	}
	if err := w.WritePacket(TagsPacket("x"), 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.WritePacket([]byte{31 << 3}, 960, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.WritePacket([]byte{31 << 3}, 1920, ogg.FlagEOS); err != nil {
		t.Fatal(err)
	}

	ex, err := NewExtractor(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if ex.Samples() != 1440 {
		t.Errorf("Samples() = %d, want 1440", ex.Samples())
	}
	_ = ex.SelectTrack(0)
	if ex.SampleTime() != 0 {
		t.Errorf("first SampleTime() = %d, want 0", ex.SampleTime())
	}
	ex.Advance()
	if ex.SampleTime() != 10_000 {
		t.Errorf("second SampleTime() = %d, want 10000", ex.SampleTime())
	}
}

func TestExtractorRejects(t *testing.T) {
	if _, err := NewExtractor(bytes.NewReader(nil)); !errors.Is(err, ErrNotOpus) {
		t.Errorf("empty input error = %v, want ErrNotOpus", err)
	}

	var buf bytes.Buffer
	w := ogg.NewWriter(&buf, 1)
	_ = w.WritePacket(Head{Channels: 1}.Bytes(), 0, ogg.FlagBOS)
	_ = w.WritePacket([]byte{31 << 3}, 960, ogg.FlagEOS)
	if _, err := NewExtractor(&buf); !errors.Is(err, ErrMissingTags) {
		t.Errorf("missing tags error = %v, want ErrMissingTags", err)
	}
}

func TestSupportedRate(t *testing.T) {
	for _, r := range []int{8000, 12000, 16000, 24000, 48000} {
		if !SupportedRate(r) {
			t.Errorf("SupportedRate(%d) = false", r)
		}
	}
	for _, r := range []int{0, 11025, 22050, 44100, 96000} {
		if SupportedRate(r) {
			t.Errorf("SupportedRate(%d) = true", r)
		}
	}
}

func TestEncoderRejectsLayout(t *testing.T) {
	if _, err := NewEncoder(codec.MediaFormat{MIME: MIME, SampleRate: 44100, Channels: 1}); !errors.Is(err, ErrSampleRate) {
		t.Errorf("NewEncoder(44100) error = %v", err)
	}
	if _, err := NewEncoder(codec.MediaFormat{MIME: MIME, SampleRate: 48000, Channels: 6}); !errors.Is(err, ErrChannels) {
		t.Errorf("NewEncoder(6ch) error = %v", err)
	}
}

func TestInt16Bytes(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768}
	got := bytesToInt16s(int16sToBytes(in))
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], in[i])
		}
	}
}

func TestHeadDecodeRate(t *testing.T) {
	tests := []struct {
		input uint32
		want  int
	}{
		{16000, 16000},
		{8000, 8000},
		{48000, 48000},
		{44100, SampleRate},
		{0, SampleRate},
	}
	for _, tt := range tests {
		if got := (Head{Channels: 1, InputSampleRate: tt.input}).DecodeRate(); got != tt.want {
			t.Errorf("DecodeRate(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestDecoderKeepsInputRate(t *testing.T) {
	head := Head{Channels: 1, PreSkip: lookahead, InputSampleRate: 16000}
	c, err := NewDecoder(codec.MediaFormat{MIME: MIME, SampleRate: head.DecodeRate(), Channels: 1, CSD: [][]byte{head.Bytes()}})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.OutputFormat().SampleRate; got != 16000 {
		t.Errorf("decoder output rate = %d, want 16000", got)
	}

	c, err = NewDecoder(codec.MediaFormat{MIME: MIME, SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.OutputFormat().SampleRate; got != SampleRate {
		t.Errorf("decoder output rate for 44100 = %d, want %d", got, SampleRate)
	}
}

func TestEncoderHeadPreSkip(t *testing.T) {
	c, err := NewEncoder(codec.MediaFormat{MIME: MIME, SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	out := c.OutputFormat()
	if len(out.CSD) != 1 {
		t.Fatalf("CSD entries = %d, want 1", len(out.CSD))
	}
	h, err := ParseHead(out.CSD[0])
	if err != nil {
		t.Fatal(err)
	}
	if h.PreSkip != lookahead || h.InputSampleRate != 16000 {
		t.Errorf("head = %+v, want pre-skip %d at 16000 Hz", h, lookahead)
	}
}
