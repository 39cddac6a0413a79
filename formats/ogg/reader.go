// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"errors"
	"fmt"
	"io"
)

// Packet is a reassembled packet with the granule position of the page on
// which it ended.
type Packet struct {
	Data    []byte
	Granule int64
	EOS     bool
}

// Reader reassembles packets of the first logical bitstream found. Pages of
// other streams are skipped.
type Reader struct {
	r       io.Reader
	serial  uint32
	started bool
	partial []byte
	queue   []Packet
	eos     bool
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadPacket returns the next packet or io.EOF.
func (r *Reader) ReadPacket() (Packet, error) {
	for len(r.queue) == 0 {
		if r.eos {
			return Packet{}, io.EOF
		}
		if err := r.nextPage(); err != nil {
			return Packet{}, err
		}
	}
	p := r.queue[0]
	r.queue = r.queue[1:]
	return p, nil
}

func (r *Reader) nextPage() error {
	p, err := ReadPage(r.r)
	if errors.Is(err, io.EOF) {
		if len(r.partial) > 0 {
			return fmt.Errorf("%w: stream ended inside a packet", ErrTruncated)
		}
		r.eos = true
		return nil
	}
	if err != nil {
		return err
	}

	if !r.started {
		r.serial = p.Serial
		r.started = true
	} else if p.Serial != r.serial {
		return nil
	}
	if p.Flags&FlagContinued == 0 {
		r.partial = r.partial[:0]
	}

	var (
		off  int
		last = -1
	)
	for i, s := range p.Segments {
		r.partial = append(r.partial, p.Data[off:off+int(s)]...)
		off += int(s)
		if s < 255 {
			r.queue = append(r.queue, Packet{Data: append([]byte(nil), r.partial...), Granule: -1})
			r.partial = r.partial[:0]
			last = i
		}
	}
	if last >= 0 {
		r.queue[len(r.queue)-1].Granule = p.Granule
		if p.Flags&FlagEOS != 0 {
			r.queue[len(r.queue)-1].EOS = true
		}
	}
	if p.Flags&FlagEOS != 0 {
		r.eos = true
	}
	return nil
}
