// Package epipeline runs the round trip evaluation: it streams HDR
// scenes through forward and inverse tone mapping, scores every
// reconstruction, and then fits, ranks and plots the results.
package epipeline

import(
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/abworrall/hdr-roundtrip/pkg/ecolor"
	"github.com/abworrall/hdr-roundtrip/pkg/efeatures"
	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/emath"
	"github.com/abworrall/hdr-roundtrip/pkg/emetrics"
	"github.com/abworrall/hdr-roundtrip/pkg/eplot"
	"github.com/abworrall/hdr-roundtrip/pkg/erank"
	"github.com/abworrall/hdr-roundtrip/pkg/eregress"
	"github.com/abworrall/hdr-roundtrip/pkg/escene"
	"github.com/abworrall/hdr-roundtrip/pkg/etable"
	"github.com/abworrall/hdr-roundtrip/pkg/etonemap"
)

const ErrorColumn = "pu_error"

// Pipeline accumulates records, one scene at a time. It is not safe for
// concurrent use.
type Pipeline struct {
	Config

	Backend   emath.Backend
	Metrics   emetrics.Metrics
	Operators []etonemap.Operator
	Inverse   etonemap.Inverse
	RunID     string

	Records   []Record
}

// Report is what a run produced, beyond the files it wrote.
type Report struct {
	RunID        string
	Metrics      *etable.Table      // the primary operator's records
	Regression   eregress.Result
	Ranking      []erank.Entry
	Correlations map[string]float64 // pearson r of each feature with pu_error
	Summary      Summary
}

func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	be, err := cfg.GetBackend()
	if err != nil {
		return nil, err
	}
	ops, err := cfg.GetOperators()
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		Config:    cfg,
		Backend:   be,
		Metrics:   emetrics.New(be),
		Operators: ops,
		Inverse:   cfg.GetInverse(),
		RunID:     uuid.NewString(),
	}, nil
}

// Run evaluates every scene in the configured data source, and writes
// out all the results.
func Run(cfg Config) (Report, error) {
	p, err := New(cfg)
	if err != nil {
		return Report{}, err
	}
	src, err := escene.NewFolderSource(cfg.DataSource)
	if err != nil {
		return Report{}, err
	}
	log.Printf("Found %d scenes in %s\n", src.Len(), cfg.DataSource)

	if err := p.Consume(src); err != nil {
		return Report{}, err
	}
	return p.Report()
}

// Consume evaluates scenes until the source runs dry. The first error
// aborts.
func (p *Pipeline)Consume(src escene.Source) error {
	log.Printf("Host: %s\n", emath.DescribeHost(p.Backend))
	if p.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", p.Config.AsYaml())
	}

	for {
		sc, err := src.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		tStart := time.Now()
		recs, err := p.Evaluate(sc)
		sc.Image.Release()
		if err != nil {
			return fmt.Errorf("scene '%s': %v", sc.Name, err)
		}

		if p.Verbosity > 0 {
			log.Printf("Scene %s evaluated in %s, %s\n", sc.Name, time.Since(tStart), recs[0].Features)
		}
	}
}

// Evaluate scores one scene under every operator, at every display
// peak. The records come back (and are appended to p.Records) ordered
// by operator, then peak.
func (p *Pipeline)Evaluate(sc escene.Scene) ([]Record, error) {
	feats := efeatures.ExtractWith(p.Backend, sc.Image)
	recs := []Record{}

	for _, op := range p.Operators {
		ldr, err := op.Forward(sc.Image)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", op.Name(), err)
		}
		recon := p.Inverse.Inverse(ldr)
		ldr.Release()

		for _, peak := range p.Peaks() {
			r := Record{
				Scene:       sc.Name,
				Operator:    op.Name(),
				DisplayPeak: peak,
				RMSE:        p.Metrics.RMSE(sc.Image, recon),
				PUError:     p.Metrics.PUError(sc.Image, recon, peak),
				Features:    feats,
			}
			if p.ExtraMetrics {
				r.LogRMSE = p.Metrics.LogRMSE(sc.Image, recon)
				r.DynamicRangeError = p.Metrics.DynamicRangeError(sc.Image, recon)
			}
			recs = append(recs, r)

			if p.Verbosity > 0 {
				p.dumpErrorMap(sc, op.Name(), peak, recon)
			}
			if p.Verbosity > 1 {
				log.Printf("  %s\n", r)
			}
		}

		if p.Verbosity > 1 {
			log.Printf("  %s color: chroma=%.6f dE2000=%.3f contrast %.3f -> %.3f\n", op.Name(),
				ecolor.ChromaticityErrorWith(p.Backend, sc.Image, recon),
				ecolor.MeanDeltaE2000(sc.Image, recon),
				ecolor.SuprathresholdContrast(p.Backend, ecolor.Luminance(sc.Image)),
				ecolor.SuprathresholdContrast(p.Backend, ecolor.Luminance(recon)))
		}
		recon.Release()
	}

	p.Records = append(p.Records, recs...)
	return recs, nil
}

func (p *Pipeline)dumpErrorMap(sc escene.Scene, op string, peak float64, recon eimage.Image) {
	errMap := p.Metrics.PUErrorMap(sc.Image, recon, peak)
	filename := filepath.Join(p.FiguresDir(), "heatmaps", fmt.Sprintf("%s_%s_%.0f.png", sc.Name, op, peak))
	title := fmt.Sprintf("%s %s @%.0f nits", sc.Name, op, peak)
	if err := errMap.ToHeatmap(title, filename); err != nil {
		log.Printf("heatmap %s: %v\n", filename, err)
		return
	}
	log.Printf("heatmap %s: %s\n", filename, errMap.Stats())
}

// primaryRecords are those from the first operator; they alone feed the
// metrics table and the regression.
func (p *Pipeline)primaryRecords() []Record {
	ret := []Record{}
	for _, r := range p.Records {
		if r.Operator == p.Operators[0].Name() {
			ret = append(ret, r)
		}
	}
	return ret
}

// openWriters returns where tables go: always the csv dir, and the
// sqlite db if one is configured.
func openWriters(c Config, runID string) ([]etable.Writer, func(), error) {
	writers := []etable.Writer{etable.CSVDir{Dir: c.CSVDir()}}
	if c.SQLitePath == "" {
		return writers, func(){}, nil
	}

	sink, err := etable.OpenSQLite(c.SQLitePath, runID)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := sink.Close(); err != nil {
			log.Printf("closing %s: %v\n", c.SQLitePath, err)
		}
	}
	return append(writers, sink), closer, nil
}

func writeTable(writers []etable.Writer, name string, t *etable.Table) error {
	for _, w := range writers {
		if err := w.WriteTable(name, t); err != nil {
			return err
		}
	}
	return nil
}

// Report writes the tables and figures for the records gathered so far:
// the metrics table, a regression of pu_error against the features,
// and the operator ranking.
func (p *Pipeline)Report() (Report, error) {
	rep := Report{RunID: p.RunID, Correlations: map[string]float64{}}
	if len(p.Records) == 0 {
		return rep, fmt.Errorf("no scenes were evaluated")
	}

	writers, closer, err := openWriters(p.Config, p.RunID)
	if err != nil {
		return rep, err
	}
	defer closer()

	rep.Metrics = RecordsTable(p.primaryRecords(), false, p.ExtraMetrics)
	if err := writeTable(writers, "bidirectional_metrics", rep.Metrics); err != nil {
		return rep, err
	}

	rep.Regression, err = eregress.Run(rep.Metrics, efeatures.Names, ErrorColumn, p.Regression)
	if err != nil {
		return rep, err
	}
	if err := writeTable(writers, "regression_summary", rep.Regression.SummaryTable()); err != nil {
		return rep, err
	}
	if err := writeTable(writers, "regression_coefficients", rep.Regression.CoefficientTable()); err != nil {
		return rep, err
	}

	log.Printf("Feature correlations with %s:\n", ErrorColumn)
	for _, name := range efeatures.Names {
		r, err := eregress.Correlation(rep.Metrics, name, ErrorColumn)
		if err != nil {
			return rep, err
		}
		rep.Correlations[name] = r
		log.Printf("  %-16s r=% .4f\n", name, r)
	}
	log.Printf("Highlight correlation: r=%.4f\n", rep.Correlations["highlight_ratio"])

	allRecs := RecordsTable(p.Records, true, p.ExtraMetrics)
	if rep.Ranking, err = erank.Entries(allRecs, ErrorColumn); err != nil {
		return rep, err
	}
	if err := writeTable(writers, "operator_ranking", erank.Table(rep.Ranking, ErrorColumn)); err != nil {
		return rep, err
	}

	if err := p.plot(rep.Metrics); err != nil {
		return rep, err
	}

	puErrs, _ := rep.Metrics.Floats(ErrorColumn)
	rep.Summary = Summarize(puErrs)
	log.Printf("%s summary: %s\n", ErrorColumn, rep.Summary)
	if p.Verbosity > 0 {
		log.Printf("%s histogram (millionths):\n%s\n", ErrorColumn, rep.Summary.Histogram)
	}

	log.Printf("Regression R2: %.4f\n", rep.Regression.R2)
	log.Printf("Cross-validated R2: %.4f\n", rep.Regression.CVR2)
	log.Printf("Results written to %s (run %s)\n", p.ResultsRoot, p.RunID)

	return rep, nil
}

func (p *Pipeline)plot(t *etable.Table) error {
	dir := p.FiguresDir()
	cols := append(append([]string{}, efeatures.Names...), ErrorColumn)

	if err := eplot.CorrelationMatrix(t, cols, filepath.Join(dir, "correlation_matrix.png")); err != nil {
		return err
	}
	if err := eplot.ErrorDistribution(t, ErrorColumn, filepath.Join(dir, ErrorColumn + "_distribution.png")); err != nil {
		return err
	}
	for _, name := range efeatures.Names {
		filename := filepath.Join(dir, fmt.Sprintf("%s_vs_%s.png", ErrorColumn, name))
		if err := eplot.ErrorVsFeature(t, name, ErrorColumn, filename); err != nil {
			return err
		}
	}
	return nil
}
