// dataset-verify - Cross-check the loaded dataset against the parquet file
//
// Compares row counts, time range, and per-label distribution between the
// canonical dataset parquet file and the ClickHouse table, and reports any
// divergence. Exit code 1 on mismatch.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/dataset-verify ./cmd/dataset-verify

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/flarelab/flarecast/internal/common"
	"github.com/flarelab/flarecast/internal/dataset"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	cfg := common.DefaultConfig()

	chHost := flag.String("ch-host", fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", "dataset", "ClickHouse table")
	inPath := flag.String("in", filepath.Join(cfg.ProcessedDir(), "dataset.parquet"), "Input dataset parquet file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dataset-verify v%s - Dataset Load Verifier\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Verifies the ClickHouse table against the parquet artifact:\n")
		fmt.Fprintf(os.Stderr, "row count, time range, and label distribution.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("Dataset Verify v%s", Version)
	log.Println("=========================================================")

	ctx := context.Background()

	rows, err := dataset.ReadTableRows(*inPath)
	if err != nil {
		log.Fatalf("Cannot read dataset: %v", err)
	}

	parquetLabels := make(map[int8]uint64)
	var parquetMin, parquetMax int64
	for i, r := range rows {
		parquetLabels[int8(r.Label)]++
		if i == 0 || r.TimestampMs < parquetMin {
			parquetMin = r.TimestampMs
		}
		if i == 0 || r.TimestampMs > parquetMax {
			parquetMax = r.TimestampMs
		}
	}
	log.Printf("[%s] %d rows", filepath.Base(*inPath), len(rows))

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{*chHost},
		Auth: clickhouse.Auth{
			Database: *chDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 10 * time.Second,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("Table: %s", tableFQN)

	var tableCount uint64
	var tableMin, tableMax time.Time
	query := fmt.Sprintf("SELECT count(), min(time), max(time) FROM %s", tableFQN)
	if err := conn.QueryRow(ctx, query).Scan(&tableCount, &tableMin, &tableMax); err != nil {
		log.Fatalf("Count query failed: %v", err)
	}

	tableLabels := make(map[int8]uint64)
	res, err := conn.Query(ctx, fmt.Sprintf("SELECT label, count() FROM %s GROUP BY label ORDER BY label", tableFQN))
	if err != nil {
		log.Fatalf("Label query failed: %v", err)
	}
	for res.Next() {
		var label int8
		var count uint64
		if err := res.Scan(&label, &count); err != nil {
			log.Fatalf("Label scan failed: %v", err)
		}
		tableLabels[label] = count
	}
	res.Close()

	mismatches := 0
	check := func(name string, ok bool, detail string) {
		if ok {
			log.Printf("  OK   %-20s %s", name, detail)
		} else {
			log.Printf("  FAIL %-20s %s", name, detail)
			mismatches++
		}
	}

	log.Println()
	log.Println("Checks:")
	check("row count", tableCount == uint64(len(rows)),
		fmt.Sprintf("parquet=%d table=%d", len(rows), tableCount))
	if len(rows) > 0 {
		check("time range start", tableMin.UTC().UnixMilli() == parquetMin,
			fmt.Sprintf("parquet=%s table=%s", time.UnixMilli(parquetMin).UTC().Format(time.RFC3339), tableMin.UTC().Format(time.RFC3339)))
		check("time range end", tableMax.UTC().UnixMilli() == parquetMax,
			fmt.Sprintf("parquet=%s table=%s", time.UnixMilli(parquetMax).UTC().Format(time.RFC3339), tableMax.UTC().Format(time.RFC3339)))
	}
	for label := int8(0); label <= 4; label++ {
		if parquetLabels[label] == 0 && tableLabels[label] == 0 {
			continue
		}
		check(fmt.Sprintf("label %d count", label), parquetLabels[label] == tableLabels[label],
			fmt.Sprintf("parquet=%d table=%d", parquetLabels[label], tableLabels[label]))
	}

	log.Println()
	log.Println("=========================================================")
	if mismatches > 0 {
		log.Printf("Verification FAILED: %d mismatch(es)", mismatches)
		log.Println("=========================================================")
		os.Exit(1)
	}
	log.Println("Verification passed")
	log.Println("=========================================================")
}
