package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/peterzat/auto-pdf-signer/internal/config"
	"github.com/peterzat/auto-pdf-signer/internal/doc"
	"github.com/peterzat/auto-pdf-signer/internal/entity"
	"github.com/peterzat/auto-pdf-signer/internal/sign"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging keeps narration on stderr; debug mode adds source
// locations and timestamps.
func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stderr)
	if cfg.IsDebug() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(0)
	}
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		var missing *config.MissingFilesError
		if errors.As(err, &missing) {
			fmt.Fprintln(os.Stderr, "Error: missing required files:")
			for _, p := range missing.Paths {
				fmt.Fprintf(os.Stderr, "  - %s\n", p)
			}
			os.Exit(1)
		}
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}
	if cfg.IsDebug() {
		log.Printf("starting with configuration: %s", cfg.String())
	}

	if err := run(cfg); err != nil {
		log.Printf("signing failed: %v", err)
		os.Exit(1)
	}
	log.Printf("successfully created signed PDF: %s", cfg.OutputPath)
}

// run executes one complete signing run.
func run(cfg *config.Config) error {
	log.Printf("loading entity data from %s", cfg.EntityFile)
	rec, err := entity.Load(cfg.EntityFile)
	if err != nil {
		return err
	}
	log.Printf("loaded %d entity value(s)", rec.Len())

	log.Printf("opening PDF document %s", cfg.InputPDF)
	d, err := doc.Open(cfg.InputPDF)
	if err != nil {
		return err
	}
	defer d.Close()

	signer := sign.New(sign.Options{
		SignatureImage: cfg.SignatureImage,
		OutputPath:     cfg.OutputPath,
		FlattenScale:   cfg.FlattenScale,
	})
	return signer.Sign(d, rec)
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("auto-pdf-signer\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
