// flux-download - Fetch GOES X-ray flux feeds from NOAA SWPC
//
// Downloads the rolling GOES XRS flux JSON feeds into the raw flux
// directory. Feeds overlap, so repeated runs accumulate history; the
// normalizer deduplicates overlapping timestamps downstream. Transfers
// retry with exponential backoff and land via temp-file rename.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/flux-download ./cmd/flux-download

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/flarelab/flarecast/internal/common"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// FluxSource defines one SWPC flux feed.
type FluxSource struct {
	Name     string
	URL      string
	Filename string
	Desc     string
}

var sources = []FluxSource{
	{
		Name:     "xrays_6h",
		URL:      "https://services.swpc.noaa.gov/json/goes/primary/xrays-6-hour.json",
		Filename: "goes_xrays_6h_%s.json",
		Desc:     "GOES X-ray flux, 6-hour rolling window",
	},
	{
		Name:     "xrays_1d",
		URL:      "https://services.swpc.noaa.gov/json/goes/primary/xrays-1-day.json",
		Filename: "goes_xrays_1d_%s.json",
		Desc:     "GOES X-ray flux, 1-day rolling window",
	},
	{
		Name:     "xrays_7d",
		URL:      "https://services.swpc.noaa.gov/json/goes/primary/xrays-7-day.json",
		Filename: "goes_xrays_7d_%s.json",
		Desc:     "GOES X-ray flux, 7-day rolling window",
	},
}

func downloadFile(client *http.Client, url, destPath string) (int64, error) {
	var body []byte
	operation := func() error {
		resp, err := client.Get(url)
		if err != nil {
			return fmt.Errorf("HTTP GET: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("retryable status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, bo); err != nil {
		return 0, err
	}

	tmpPath := destPath + ".tmp"
	if err := os.WriteFile(tmpPath, body, 0644); err != nil {
		return 0, fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename: %w", err)
	}
	return int64(len(body)), nil
}

func main() {
	cfg := common.DefaultConfig()

	destDir := flag.String("dest", cfg.RawFluxDir(), "Destination directory")
	timeout := flag.Duration("timeout", 60*time.Second, "HTTP timeout per download")
	listSources := flag.Bool("list", false, "List available feeds")
	source := flag.String("source", "all", "Feed to download (or 'all')")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "flux-download v%s - GOES Flux Feed Downloader\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Downloads GOES XRS flux feeds from NOAA SWPC.\n\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nFeeds:\n")
		for _, s := range sources {
			fmt.Fprintf(os.Stderr, "  %-10s %s\n", s.Name, s.Desc)
		}
	}

	flag.Parse()

	if *listSources {
		fmt.Printf("Available flux feeds:\n\n")
		for _, s := range sources {
			fmt.Printf("  %-10s %s\n", s.Name, s.Desc)
			fmt.Printf("             URL: %s\n\n", s.URL)
		}
		return
	}

	log.Println("=========================================================")
	log.Printf("Flux Download v%s", Version)
	log.Println("=========================================================")
	log.Printf("Destination: %s", *destDir)

	if err := os.MkdirAll(*destDir, 0755); err != nil {
		log.Fatalf("Cannot create destination directory: %v", err)
	}

	client := &http.Client{Timeout: *timeout}
	// Date-stamped filenames keep successive snapshots side by side.
	stamp := time.Now().UTC().Format("20060102")

	startTime := time.Now()
	downloaded := 0
	failed := 0
	var totalBytes int64

	for _, src := range sources {
		if *source != "all" && *source != src.Name {
			continue
		}

		destPath := filepath.Join(*destDir, fmt.Sprintf(src.Filename, stamp))
		log.Printf("[%s] Downloading from %s...", src.Name, src.URL)

		n, err := downloadFile(client, src.URL, destPath)
		if err != nil {
			log.Printf("[%s] ERROR: %v", src.Name, err)
			failed++
			continue
		}
		log.Printf("[%s] Downloaded %s (%d bytes)", src.Name, filepath.Base(destPath), n)
		totalBytes += n
		downloaded++
	}

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Download Summary")
	log.Println("=========================================================")
	log.Printf("Downloaded: %d files (%.2f MiB)", downloaded, float64(totalBytes)/(1024*1024))
	log.Printf("Failed:     %d files", failed)
	log.Printf("Elapsed:    %v", elapsed.Round(time.Millisecond))
	log.Println("=========================================================")

	if failed > 0 {
		os.Exit(1)
	}
}
