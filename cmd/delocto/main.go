// Command delocto is the UCI front end for the Delocto search engine.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/go-logr/stdr"

	"github.com/moterink/delocto/internal/uci"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	if path := profilePath(); path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatalf("delocto: could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("delocto: could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	protocol := uci.New(logger, os.Stdout)
	protocol.Run(os.Stdin)
}

func profilePath() string {
	if *cpuprofile != "" {
		return *cpuprofile
	}
	return os.Getenv("DELOCTO_CPUPROFILE")
}
