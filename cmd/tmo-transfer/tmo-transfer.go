package main

import(
	"flag"
	"log"

	"github.com/abworrall/hdr-roundtrip/pkg/epipeline"
)

var(
	fConfigFile string
	fVerbosity int
	fDataSource string
	fResultsRoot string
)

func init() {
	flag.StringVar(&fConfigFile, "config", "", "yaml config file; the flags below override it")
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fDataSource, "data", "data/hdr_exr", "folder of .exr/.hdr scenes")
	flag.StringVar(&fResultsRoot, "results", "results", "where csv/ gets written")
	flag.Parse()

	log.Printf("tmo-transfer starting\n")
}

func main() {
	cfg := epipeline.NewConfig()
	if fConfigFile != "" {
		var err error
		if cfg, err = epipeline.LoadConfig(fConfigFile); err != nil {
			log.Fatal(err)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":       cfg.Verbosity = fVerbosity
		case "data":    cfg.DataSource = fDataSource
		case "results": cfg.ResultsRoot = fResultsRoot
		}
	})

	if _, err := epipeline.RunTransfer(cfg); err != nil {
		log.Fatal(err)
	}
}
