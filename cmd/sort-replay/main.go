// Command sort-replay runs the SORT tracker over a CSV file of per-frame detections
// and writes tracked objects to another CSV file.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/LdDl/sort-tracker/mot"
)

// Config holds command line options
type Config struct {
	InputFile  string
	OutputFile string
	ConfigFile string
	Verbose    bool
}

func parseFlags() Config {
	cfg := Config{}
	flag.StringVar(&cfg.InputFile, "in", "", "Detections CSV (frame;x1;y1;x2;y2;class)")
	flag.StringVar(&cfg.OutputFile, "out", "", "Tracks CSV; stdout when empty")
	flag.StringVar(&cfg.ConfigFile, "config", "", "Tracker tuning JSON file")
	flag.BoolVar(&cfg.Verbose, "v", false, "Log track lifecycle to stderr")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()

	if cfg.InputFile == "" {
		log.Fatal("Detections file is required")
	}

	trackerCfg := &mot.TrackerConfig{}
	if cfg.ConfigFile != "" {
		var err error
		trackerCfg, err = mot.LoadTrackerConfig(cfg.ConfigFile)
		if err != nil {
			log.Fatalf("Failed to load tracker config: %v", err)
		}
	}

	opts := make([]mot.Option, 0, 1)
	if cfg.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, mot.WithLogger(logger))
	}
	tracker, err := mot.NewSortTrackerFromConfig(trackerCfg, opts...)
	if err != nil {
		log.Fatalf("Failed to create tracker: %v", err)
	}

	in, err := os.Open(cfg.InputFile)
	if err != nil {
		log.Fatalf("Failed to open detections: %v", err)
	}
	defer in.Close()

	out := os.Stdout
	if cfg.OutputFile != "" {
		out, err = os.Create(cfg.OutputFile)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer out.Close()
	}

	stats, err := replay(in, out, tracker)
	if err != nil {
		log.Fatalf("Replay failed: %v", err)
	}
	log.Printf("Replayed %d frames, %d detections, %d records (run %s)", stats.Frames, stats.Detections, stats.Records, tracker.RunID())
}
