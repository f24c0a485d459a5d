package main

import(
	"flag"
	"log"

	"github.com/abworrall/hdr-roundtrip/pkg/epipeline"
	"github.com/abworrall/hdr-roundtrip/pkg/erest"
)

var(
	fConfigFile string
	fDataSource string
	fAddr string
)

func init() {
	flag.StringVar(&fConfigFile, "config", "", "yaml config file")
	flag.StringVar(&fDataSource, "data", "data/hdr_exr", "folder of .exr/.hdr scenes that requests may name")
	flag.StringVar(&fAddr, "addr", ":8080", "address to listen on")
	flag.Parse()

	log.Printf("tmo-serve starting\n")
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
		if f.Name == "data" {
			cfg.DataSource = fDataSource
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	if err := erest.NewServer(cfg).Serve(fAddr); err != nil {
		log.Fatal(err)
	}
}
