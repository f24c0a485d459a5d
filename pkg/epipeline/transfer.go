package epipeline

import(
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/abworrall/hdr-roundtrip/pkg/emath"
	"github.com/abworrall/hdr-roundtrip/pkg/emetrics"
	"github.com/abworrall/hdr-roundtrip/pkg/escene"
	"github.com/abworrall/hdr-roundtrip/pkg/etable"
	"github.com/abworrall/hdr-roundtrip/pkg/etonemap"
)

// Transfer measures how well the inverse built for one operator copes
// with the output of another. Each scene goes through the train
// operator and the test operator, and both are reconstructed with the
// train operator's inverse.
type Transfer struct {
	Config

	Backend emath.Backend
	Metrics emetrics.Metrics
	Train   etonemap.Operator
	Test    etonemap.Operator
	Inverse etonemap.Inverse
	Peak    float64
	RunID   string

	Records []TransferRecord
}

type TransferReport struct {
	Table               *etable.Table
	MeanPUErrorTrain    float64
	MeanPUErrorTransfer float64
}

func NewTransfer(cfg Config, train, test string) (*Transfer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	be, err := cfg.GetBackend()
	if err != nil {
		return nil, err
	}
	trainOp, err := etonemap.Lookup(train, cfg.Exposure)
	if err != nil {
		return nil, err
	}
	testOp, err := etonemap.Lookup(test, cfg.Exposure)
	if err != nil {
		return nil, err
	}

	return &Transfer{
		Config:  cfg,
		Backend: be,
		Metrics: emetrics.New(be),
		Train:   trainOp,
		Test:    testOp,
		Inverse: etonemap.InverseFor(train, cfg.Exposure),
		Peak:    emetrics.DefaultPeak,
		RunID:   uuid.NewString(),
	}, nil
}

// RunTransfer runs reinhard -> filmic over the configured data source.
func RunTransfer(cfg Config) (TransferReport, error) {
	tr, err := NewTransfer(cfg, "reinhard", "filmic")
	if err != nil {
		return TransferReport{}, err
	}
	src, err := escene.NewFolderSource(cfg.DataSource)
	if err != nil {
		return TransferReport{}, err
	}

	if err := tr.Consume(src); err != nil {
		return TransferReport{}, err
	}
	return tr.Report()
}

func (tr *Transfer)Consume(src escene.Source) error {
	for {
		sc, err := src.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		rec, err := tr.Evaluate(sc)
		sc.Image.Release()
		if err != nil {
			return fmt.Errorf("scene '%s': %v", sc.Name, err)
		}
		if tr.Verbosity > 0 {
			log.Printf("%s: train=%.6f transfer=%.6f\n", rec.Scene, rec.PUErrorTrain, rec.PUErrorTransfer)
		}
	}
}

func (tr *Transfer)roundTrip(op etonemap.Operator, sc escene.Scene) (float64, error) {
	ldr, err := op.Forward(sc.Image)
	if err != nil {
		return 0, fmt.Errorf("%s: %v", op.Name(), err)
	}
	recon := tr.Inverse.Inverse(ldr)
	ldr.Release()
	return tr.Metrics.PUError(sc.Image, recon, tr.Peak), nil
}

func (tr *Transfer)Evaluate(sc escene.Scene) (TransferRecord, error) {
	rec := TransferRecord{
		Scene:         sc.Name,
		TrainOperator: tr.Train.Name(),
		TestOperator:  tr.Test.Name(),
	}

	var err error
	if rec.PUErrorTrain, err = tr.roundTrip(tr.Train, sc); err != nil {
		return rec, err
	}
	if rec.PUErrorTransfer, err = tr.roundTrip(tr.Test, sc); err != nil {
		return rec, err
	}

	tr.Records = append(tr.Records, rec)
	return rec, nil
}

// Report writes operator_transfer_results, and logs the mean errors.
func (tr *Transfer)Report() (TransferReport, error) {
	rep := TransferReport{Table: TransferTable(tr.Records)}
	if len(tr.Records) == 0 {
		return rep, fmt.Errorf("no scenes were evaluated")
	}

	for _, r := range tr.Records {
		rep.MeanPUErrorTrain += r.PUErrorTrain
		rep.MeanPUErrorTransfer += r.PUErrorTransfer
	}
	rep.MeanPUErrorTrain /= float64(len(tr.Records))
	rep.MeanPUErrorTransfer /= float64(len(tr.Records))

	writers, closer, err := openWriters(tr.Config, tr.RunID)
	if err != nil {
		return rep, err
	}
	defer closer()
	if err := writeTable(writers, "operator_transfer_results", rep.Table); err != nil {
		return rep, err
	}

	log.Printf("Mean PU error (%s -> inverse): %.6f\n", tr.Train.Name(), rep.MeanPUErrorTrain)
	log.Printf("Mean PU error (%s -> inverse): %.6f\n", tr.Test.Name(), rep.MeanPUErrorTransfer)
	log.Printf("Results written to %s\n", etable.CSVDir{Dir: tr.CSVDir()}.Path("operator_transfer_results"))

	return rep, nil
}
