// SPDX-License-Identifier: EPL-2.0

package voxedit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/edit"
)

// OutputKind is the container a merge writes.
type OutputKind int

const (
	// WavOutput is chosen when every input is a WAV file.
	WavOutput OutputKind = iota
	// CompressedOutput is chosen when any input is compressed; the result is
	// re-encoded as Ogg Opus.
	CompressedOutput
)

func (k OutputKind) String() string {
	switch k {
	case WavOutput:
		return "wav"
	case CompressedOutput:
		return "opus"
	}
	return fmt.Sprintf("OutputKind(%d)", int(k))
}

// Ext returns the file extension of the kind, with its leading dot.
func (k OutputKind) Ext() string { return "." + k.String() }

// MergePlan is decided from the input names before anything is decoded.
type MergePlan struct {
	Inputs []string
	Kind   OutputKind
}

// OutputPath replaces the extension of dst with the one the plan writes.
func (p MergePlan) OutputPath(dst string) string {
	return strings.TrimSuffix(dst, filepath.Ext(dst)) + p.Kind.Ext()
}

// PlanMerge checks the inputs and picks the output container.
func (e *Engine) PlanMerge(inputs []string) (MergePlan, error) {
	if len(inputs) < 2 {
		return MergePlan{}, fmt.Errorf("%w: got %d", ErrTooFewInputs, len(inputs))
	}
	plan := MergePlan{Inputs: inputs, Kind: WavOutput}
	for _, in := range inputs {
		switch e.kindOf(in) {
		case kindUnknown:
			return MergePlan{}, fmt.Errorf("%w: %q", ErrUnsupportedInput, filepath.Ext(in))
		case kindWAV:
		default:
			plan.Kind = CompressedOutput
		}
	}
	return plan, nil
}

// Merge concatenates inputs in order and writes them next to dst, with the
// extension chosen by PlanMerge. It returns the path written. Inputs that
// fail to decode are skipped; the output takes the sample rate and channel
// count of the last decoded input.
func (e *Engine) Merge(ctx context.Context, inputs []string, dst string) (string, error) {
	var out string
	err := e.run(ctx, "merge", func() error {
		plan, err := e.PlanMerge(inputs)
		if err != nil {
			return err
		}
		out = plan.OutputPath(dst)

		streams := make([]*audio.Stream, 0, len(inputs))
		for _, in := range plan.Inputs {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := e.Decode(ctx, in)
			if err != nil {
				e.log.Warn("skipping merge input", "path", in, "error", err)
				continue
			}
			if len(streams) > 0 {
				prev := streams[len(streams)-1]
				if prev.SampleRate != s.SampleRate || prev.Channels != s.Channels {
					e.log.Warn("merge inputs differ in format",
						"path", in,
						"sample_rate", s.SampleRate, "channels", s.Channels,
						"prev_sample_rate", prev.SampleRate, "prev_channels", prev.Channels)
				}
			}
			streams = append(streams, s)
		}
		if len(streams) == 0 {
			return fmt.Errorf("%w: none of %d inputs decoded", ErrNoSamples, len(inputs))
		}

		merged, err := edit.Concat(streams...)
		if err != nil {
			return err
		}
		if len(merged.Samples) == 0 {
			return ErrNoSamples
		}
		return e.stage(out, plan.Inputs, func(f *os.File) error {
			return e.encode(ctx, merged, out, f)
		})
	})
	return out, err
}
