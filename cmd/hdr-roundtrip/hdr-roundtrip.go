package main

import(
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abworrall/hdr-roundtrip/pkg/emath"
	"github.com/abworrall/hdr-roundtrip/pkg/epipeline"
	"github.com/abworrall/hdr-roundtrip/pkg/etonemap"
)

var(
	fConfigFile string
	fVerbosity int
	fDataSource string
	fResultsRoot string
	fDisplayPeaks string
	fOperators string
	fBackend string
	fSQLitePath string
	fExtraMetrics bool
)

func init() {
	flag.StringVar(&fConfigFile, "config", "", "yaml config file; the flags below override it")
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fDataSource, "data", "data/hdr_exr", "folder of .exr/.hdr scenes")
	flag.StringVar(&fResultsRoot, "results", "results", "where csv/ and figures/ get written")
	flag.StringVar(&fDisplayPeaks, "peaks", "100,400,1000", "display peak luminances, in nits")
	flag.StringVar(&fOperators, "operators", "reinhard", "comma separated tonemappers, first is primary: "+etonemap.ListTonemappers())
	flag.StringVar(&fBackend, "backend", "gonum", "numeric backend: "+emath.ListBackends())
	flag.StringVar(&fSQLitePath, "sqlite", "", "also append results to this sqlite db")
	flag.BoolVar(&fExtraMetrics, "extra", false, "add log_rmse and dynamic_range_error columns")
	flag.Parse()

	log.Printf("hdr-roundtrip starting\n")
}

func parsePeaks(s string) ([]float64, error) {
	peaks := []float64{}
	for _, str := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil, fmt.Errorf("bad display peak '%s': %v", str, err)
		}
		peaks = append(peaks, v)
	}
	return peaks, nil
}

func main() {
	cfg := epipeline.NewConfig()
	if fConfigFile != "" {
		var err error
		if cfg, err = epipeline.LoadConfig(fConfigFile); err != nil {
			log.Fatal(err)
		}
		log.Printf("Loaded base configuration from %s\n", fConfigFile)
	}

	// Only flags given explicitly override the config file
	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":         cfg.Verbosity = fVerbosity
		case "data":      cfg.DataSource = fDataSource
		case "results":   cfg.ResultsRoot = fResultsRoot
		case "operators": cfg.Operators = strings.Split(fOperators, ",")
		case "backend":   cfg.Backend = fBackend
		case "sqlite":    cfg.SQLitePath = fSQLitePath
		case "extra":     cfg.ExtraMetrics = fExtraMetrics
		case "peaks":     cfg.DisplayPeaks, err = parsePeaks(fDisplayPeaks)
		}
	})
	if err != nil {
		log.Fatal(err)
	}

	if _, err := epipeline.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
