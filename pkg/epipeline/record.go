package epipeline

import(
	"fmt"

	"github.com/abworrall/hdr-roundtrip/pkg/efeatures"
	"github.com/abworrall/hdr-roundtrip/pkg/etable"
)

// A Record is the outcome of one round trip of one scene, scored at one
// display peak.
type Record struct {
	Scene       string  `json:"scene"`
	Operator    string  `json:"operator"`
	DisplayPeak float64 `json:"display_peak"`

	RMSE              float64 `json:"rmse"`
	PUError           float64 `json:"pu_error"`
	LogRMSE           float64 `json:"log_rmse"`
	DynamicRangeError float64 `json:"dynamic_range_error"`

	Features efeatures.Features `json:"features"`
}

func (r Record)String() string {
	return fmt.Sprintf("%-20s %-10s %6.0f nits: rmse=%.5f pu=%.6f", r.Scene, r.Operator, r.DisplayPeak, r.RMSE, r.PUError)
}

var(
	metricsColumns = []string{"scene", "display_peak", "rmse", "pu_error"}
	extraColumns   = []string{"log_rmse", "dynamic_range_error"}
)

// MetricsColumns is the header of the metrics table.
func MetricsColumns(withOperator, extra bool) []string {
	cols := append([]string{}, metricsColumns...)
	if withOperator {
		cols = append(cols[:1], append([]string{"operator"}, cols[1:]...)...)
	}
	cols = append(cols, efeatures.Names...)
	if extra {
		cols = append(cols, extraColumns...)
	}
	return cols
}

// RecordsTable lays out the records as the metrics table.
func RecordsTable(recs []Record, withOperator, extra bool) *etable.Table {
	t := etable.New(MetricsColumns(withOperator, extra)...)
	for _, r := range recs {
		row := []interface{}{r.Scene}
		if withOperator {
			row = append(row, r.Operator)
		}
		row = append(row, r.DisplayPeak, r.RMSE, r.PUError)
		for _, v := range r.Features.Values() {
			row = append(row, v)
		}
		if extra {
			row = append(row, r.LogRMSE, r.DynamicRangeError)
		}
		if err := t.Append(row...); err != nil {
			panic(err)
		}
	}
	return t
}

// TransferRecord is one scene's outcome in the transfer experiment.
type TransferRecord struct {
	Scene           string  `json:"scene"`
	TrainOperator   string  `json:"train_operator"`
	TestOperator    string  `json:"test_operator"`
	PUErrorTrain    float64 `json:"pu_error_train"`
	PUErrorTransfer float64 `json:"pu_error_transfer"`
}

func TransferTable(recs []TransferRecord) *etable.Table {
	t := etable.New("scene", "train_operator", "test_operator", "pu_error_train", "pu_error_transfer")
	for _, r := range recs {
		t.Append(r.Scene, r.TrainOperator, r.TestOperator, r.PUErrorTrain, r.PUErrorTransfer)
	}
	return t
}
