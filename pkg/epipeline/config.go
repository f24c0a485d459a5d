package epipeline

import(
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/hdr-roundtrip/pkg/emath"
	"github.com/abworrall/hdr-roundtrip/pkg/eregress"
	"github.com/abworrall/hdr-roundtrip/pkg/etonemap"
)

var ErrBadConfig = errors.New("invalid config")

type Config struct {
	Verbosity    int             `yaml:"verbosity"`

	DataSource   string          `yaml:"data_source"`   // a folder of .exr/.hdr scenes
	ResultsRoot  string          `yaml:"results_root"`  // gets csv/ and figures/ subdirs
	SQLitePath   string          `yaml:"sqlite_path"`   // if set, tables are also appended here

	DisplayPeaks []float64       `yaml:"display_peaks"` // nits
	Operators    []string        `yaml:"operators"`     // the first one feeds the metrics table & regression
	Exposure     float64         `yaml:"exposure"`
	Backend      string          `yaml:"backend"`
	ExtraMetrics bool            `yaml:"extra_metrics"` // adds log_rmse, dynamic_range_error columns

	Regression   eregress.Config `yaml:"regression"`
}

func NewConfig() Config {
	return Config{
		DataSource:   "data/hdr_exr",
		ResultsRoot:  "results",
		DisplayPeaks: []float64{100, 400, 1000},
		Operators:    []string{"reinhard"},
		Exposure:     1.0,
		Backend:      "gonum",
		Regression:   eregress.DefaultConfig(),
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

// LoadConfig reads a yaml file over the top of the defaults; keys not in
// the file keep their default values.
func LoadConfig(filename string) (Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}

	c, err := newConfigFromYaml(contents)
	if err != nil {
		return Config{}, fmt.Errorf("config parse %s: %v", filename, err)
	}
	return c, nil
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Printf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

func (c Config)CSVDir() string     { return filepath.Join(c.ResultsRoot, "csv") }
func (c Config)FiguresDir() string { return filepath.Join(c.ResultsRoot, "figures") }

// Peaks returns the display peaks with duplicates dropped, keeping the
// order they were first listed in.
func (c Config)Peaks() []float64 {
	seen := map[float64]bool{}
	ret := []float64{}
	for _, p := range c.DisplayPeaks {
		if !seen[p] {
			seen[p] = true
			ret = append(ret, p)
		}
	}
	return ret
}

func (c Config)Validate() error {
	if len(c.DisplayPeaks) == 0 {
		return fmt.Errorf("display_peaks is empty: %w", ErrBadConfig)
	}
	for _, p := range c.DisplayPeaks {
		if !(p > 0) {
			return fmt.Errorf("display peak %v, must be >0: %w", p, ErrBadConfig)
		}
	}

	if len(c.Operators) == 0 {
		return fmt.Errorf("operators is empty: %w", ErrBadConfig)
	}
	seen := map[string]bool{}
	for _, name := range c.Operators {
		if seen[name] {
			return fmt.Errorf("operator %q listed twice: %w", name, ErrBadConfig)
		}
		seen[name] = true
	}
	if _, err := c.GetOperators(); err != nil {
		return fmt.Errorf("%v: %w", err, ErrBadConfig)
	}
	if !(c.Exposure > 0) {
		return fmt.Errorf("exposure %v, must be >0: %w", c.Exposure, ErrBadConfig)
	}
	if _, err := c.GetBackend(); err != nil {
		return fmt.Errorf("%v: %w", err, ErrBadConfig)
	}

	return c.Regression.Validate()
}

func (c Config)GetBackend() (emath.Backend, error) {
	return emath.NewBackend(c.Backend)
}

func (c Config)GetOperators() ([]etonemap.Operator, error) {
	ops := []etonemap.Operator{}
	for _, name := range c.Operators {
		op, err := etonemap.Lookup(name, c.Exposure)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (c Config)GetInverse() etonemap.Inverse {
	return etonemap.InverseFor(c.Operators[0], c.Exposure)
}
