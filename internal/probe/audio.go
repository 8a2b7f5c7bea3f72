package probe

import (
	"math"
	"strconv"

	"hivehyde/internal/types"
)

const (
	audioSampleRate   = 44100
	audioDurationSecs = 1.0
	audioOscHz        = 10000.0
	audioChannels     = 2
	audioSumStart     = 4500
	audioSumEnd       = 5000
)

// compressorParams mirrors the DynamicsCompressorNode settings the
// fingerprint graph configures. A parameter is skipped (left at the
// node's default) whenever the runtime reports its setter missing —
// Go has no partially-implemented Web Audio nodes, so HasX always
// true here; the flags exist so a host profile can simulate an older
// engine that lacks one of them.
type compressorParams struct {
	Threshold, Knee, Ratio, Reduction, Attack, Release float64
	HasThreshold, HasKnee, HasRatio, HasReduction, HasAttack, HasRelease bool
}

func defaultCompressorParams() compressorParams {
	return compressorParams{
		Threshold: -50, HasThreshold: true,
		Knee: 40, HasKnee: true,
		Ratio: 12, HasRatio: true,
		Reduction: -20, HasReduction: true,
		Attack: 0, HasAttack: true,
		Release: 0.25, HasRelease: true,
	}
}

// Audio renders an offline-audio-context graph (triangle oscillator at
// 10kHz through a dynamics compressor to the destination) and sums the
// absolute value of channel-0 samples [4500,5000).
func (rt *Runtime) Audio() types.ProbeResult {
	p := rt.profile
	if !p.HasOfflineAudio {
		return types.Sentinel(types.ErrNoOfflineContext)
	}
	if p.AudioContextConstructFails {
		return types.Sentinel(types.ErrAudioContext)
	}

	samples := p.AudioSampleFn
	if samples == nil {
		samples = func() []float64 {
			return renderTriangleCompressed(audioSampleRate, audioOscHz, audioDurationSecs, defaultCompressorParams())
		}
	}

	data := samples()
	if data == nil {
		return types.Sentinel(types.ErrAudioRender)
	}
	end := audioSumEnd
	if end > len(data) {
		end = len(data)
	}
	if audioSumStart >= end {
		return types.Sentinel(types.ErrAudioRender)
	}

	var sum float64
	for _, v := range data[audioSumStart:end] {
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return types.Ok(strconv.FormatFloat(sum, 'f', -1, 64))
}

// renderTriangleCompressed synthesizes a triangle wave at freqHz for
// durationSecs at sampleRate and applies a static gain-reduction
// approximation of a dynamics compressor (real-time attack/release
// shaping is not needed: Audio only consumes the aggregate sum of a
// 500-sample window, not the envelope shape).
func renderTriangleCompressed(sampleRate int, freqHz, durationSecs float64, params compressorParams) []float64 {
	n := int(float64(sampleRate) * durationSecs)
	out := make([]float64, n)

	reductionDb := 0.0
	if params.HasReduction {
		reductionDb = params.Reduction
	}
	gain := math.Pow(10, reductionDb/20)

	period := float64(sampleRate) / freqHz
	for i := 0; i < n; i++ {
		phase := math.Mod(float64(i), period) / period // 0..1
		// Triangle wave: rises 0->1 over first half, falls 1->0 over
		// second half, centered at 0.
		var tri float64
		if phase < 0.5 {
			tri = 4*phase - 1
		} else {
			tri = 3 - 4*phase
		}
		out[i] = tri * gain
	}
	return out
}
