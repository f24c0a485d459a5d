package epipeline

import(
	"fmt"
	"math"

	"github.com/codahale/hdrhistogram"
	"github.com/skypies/util/histogram"
)

const(
	// hdrhistogram wants integers, so errors are recorded in millionths
	summaryScale  = 1e6
	summaryMax    = 100.0 // PU errors pass 1 once luminance exceeds the peak
	summarySigFig = 3
	textBuckets   = 20
	textMax       = 1e6   // the text histogram only buckets [0,1]
)

// Summary describes the distribution of an error column.
type Summary struct {
	N             int64
	Mean          float64
	P50, P90, P99 float64
	Histogram     string // bucketed text rendering
	Clamped       int    // values outside [0,100], recorded at the nearest end
}

func (s Summary)String() string {
	str := fmt.Sprintf("n=%d mean=%.6f p50=%.6f p90=%.6f p99=%.6f", s.N, s.Mean, s.P50, s.P90, s.P99)
	if s.Clamped > 0 {
		str += fmt.Sprintf(" (%d clamped)", s.Clamped)
	}
	return str
}

// Summarize skips NaNs, and clamps anything outside [0,100].
func Summarize(vals []float64) Summary {
	h := hdrhistogram.New(0, int64(summaryMax*summaryScale), summarySigFig)
	text := histogram.Histogram{NumBuckets: textBuckets, ValMin: 0, ValMax: textMax}

	clamped := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > summaryMax {
			clamped++
			v = math.Min(math.Max(v, 0), summaryMax)
		}
		iv := int64(math.Round(v * summaryScale))
		h.RecordValue(iv)
		text.Add(histogram.ScalarVal(int(iv)))
	}

	s := Summary{N: h.TotalCount(), Clamped: clamped}
	if s.N == 0 {
		return s
	}
	s.Mean = h.Mean() / summaryScale
	s.P50 = float64(h.ValueAtQuantile(50)) / summaryScale
	s.P90 = float64(h.ValueAtQuantile(90)) / summaryScale
	s.P99 = float64(h.ValueAtQuantile(99)) / summaryScale
	s.Histogram = fmt.Sprintf("%v", &text)

	return s
}
