// flare-download - Fetch NOAA GOES XRS yearly flare reports
//
// Mirrors the yearly X-ray event reports from the NOAA NGDC FTP archive
// into the raw flare catalogue directory. Existing files are skipped unless
// -force is given; transfers are retried with exponential backoff and land
// via temp-file rename so a killed run never leaves a truncated report.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/flare-download ./cmd/flare-download

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"

	"github.com/flarelab/flarecast/internal/common"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

const (
	defaultFTPHost = "ftp.ngdc.noaa.gov:21"
	defaultFTPDir  = "/STP/space-weather/solar-data/solar-features/solar-flares/x-rays/goes/xrs"
	reportPrefix   = "goes-xrs-report_"
)

func fetchFile(conn *ftp.ServerConn, remote, destPath string) (int64, error) {
	resp, err := conn.Retr(remote)
	if err != nil {
		return 0, fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(f, resp)
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("transfer: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename: %w", err)
	}
	return n, nil
}

func main() {
	cfg := common.DefaultConfig()

	host := flag.String("host", defaultFTPHost, "FTP server address")
	remoteDir := flag.String("remote-dir", defaultFTPDir, "Remote report directory")
	destDir := flag.String("dest", cfg.RawFlareDir(), "Destination directory")
	timeout := flag.Duration("timeout", 30*time.Second, "FTP dial timeout")
	force := flag.Bool("force", false, "Re-download files that already exist")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "flare-download v%s - NOAA Flare Report Downloader\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Mirrors yearly GOES XRS event reports from the NGDC FTP archive.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("Flare Download v%s", Version)
	log.Println("=========================================================")
	log.Printf("Server:      %s", *host)
	log.Printf("Remote Dir:  %s", *remoteDir)
	log.Printf("Destination: %s", *destDir)

	if err := os.MkdirAll(*destDir, 0755); err != nil {
		log.Fatalf("Cannot create destination directory: %v", err)
	}

	conn, err := ftp.Dial(*host, ftp.DialWithTimeout(*timeout))
	if err != nil {
		log.Fatalf("FTP dial failed: %v", err)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		log.Fatalf("FTP login failed: %v", err)
	}

	entries, err := conn.List(*remoteDir)
	if err != nil {
		log.Fatalf("FTP list failed: %v", err)
	}

	startTime := time.Now()
	downloaded := 0
	skipped := 0
	failed := 0
	var totalBytes int64

	for _, entry := range entries {
		if entry.Type != ftp.EntryTypeFile || !strings.HasPrefix(entry.Name, reportPrefix) {
			continue
		}

		destPath := filepath.Join(*destDir, entry.Name)
		if !*force {
			if _, err := os.Stat(destPath); err == nil {
				skipped++
				continue
			}
		}

		remote := path.Join(*remoteDir, entry.Name)
		log.Printf("[%s] Downloading (%d bytes)...", entry.Name, entry.Size)

		var n int64
		operation := func() error {
			var ferr error
			n, ferr = fetchFile(conn, remote, destPath)
			return ferr
		}
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 2 * time.Minute
		if err := backoff.Retry(operation, bo); err != nil {
			log.Printf("[%s] ERROR: %v", entry.Name, err)
			failed++
			continue
		}

		totalBytes += n
		downloaded++
	}

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Download Summary")
	log.Println("=========================================================")
	log.Printf("Downloaded: %d files (%.2f MiB)", downloaded, float64(totalBytes)/(1024*1024))
	log.Printf("Skipped:    %d files (already present)", skipped)
	log.Printf("Failed:     %d files", failed)
	log.Printf("Elapsed:    %v", elapsed.Round(time.Millisecond))
	log.Println("=========================================================")

	if failed > 0 {
		os.Exit(1)
	}
}
