// dataset-ingest - Load the forecasting dataset into ClickHouse
//
// Reads the canonical dataset parquet file and inserts it with the native
// columnar protocol. Column-oriented batches avoid per-row reflection on
// the insert path.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/dataset-ingest ./cmd/dataset-ingest

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"

	"github.com/flarelab/flarecast/internal/common"
	"github.com/flarelab/flarecast/internal/dataset"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

const createTableDDL = `
CREATE TABLE IF NOT EXISTS %s (
    time          DateTime('UTC'),
    flux_log      Float64,
    roll_mean_15m Float64, roll_std_15m Float64, roll_min_15m Float64, roll_max_15m Float64, delta_15m Float64,
    roll_mean_30m Float64, roll_std_30m Float64, roll_min_30m Float64, roll_max_30m Float64, delta_30m Float64,
    roll_mean_60m Float64, roll_std_60m Float64, roll_min_60m Float64, roll_max_60m Float64, delta_60m Float64,
    roll_mean_180m Float64, roll_std_180m Float64, roll_min_180m Float64, roll_max_180m Float64, delta_180m Float64,
    hour          UInt8,
    day_of_year   UInt16,
    label         Int8
) ENGINE = MergeTree()
ORDER BY time`

// DatasetBatch holds column data for native insert.
type DatasetBatch struct {
	Time      *proto.ColDateTime
	Floats    []*proto.ColFloat64 // flux_log plus the rolling features, in column order
	Hour      *proto.ColUInt8
	DayOfYear *proto.ColUInt16
	Label     *proto.ColInt8
}

// floatColumns is the ordered list of Float64 column names.
var floatColumns = []string{
	"flux_log",
	"roll_mean_15m", "roll_std_15m", "roll_min_15m", "roll_max_15m", "delta_15m",
	"roll_mean_30m", "roll_std_30m", "roll_min_30m", "roll_max_30m", "delta_30m",
	"roll_mean_60m", "roll_std_60m", "roll_min_60m", "roll_max_60m", "delta_60m",
	"roll_mean_180m", "roll_std_180m", "roll_min_180m", "roll_max_180m", "delta_180m",
}

func NewDatasetBatch() *DatasetBatch {
	b := &DatasetBatch{
		Time:      new(proto.ColDateTime),
		Hour:      new(proto.ColUInt8),
		DayOfYear: new(proto.ColUInt16),
		Label:     new(proto.ColInt8),
	}
	for range floatColumns {
		b.Floats = append(b.Floats, new(proto.ColFloat64))
	}
	return b
}

func (b *DatasetBatch) Reset() {
	b.Time.Reset()
	for _, c := range b.Floats {
		c.Reset()
	}
	b.Hour.Reset()
	b.DayOfYear.Reset()
	b.Label.Reset()
}

func (b *DatasetBatch) Len() int {
	return b.Time.Rows()
}

func (b *DatasetBatch) Input() proto.Input {
	input := proto.Input{{Name: "time", Data: b.Time}}
	for i, name := range floatColumns {
		input = append(input, proto.InputColumn{Name: name, Data: b.Floats[i]})
	}
	input = append(input,
		proto.InputColumn{Name: "hour", Data: b.Hour},
		proto.InputColumn{Name: "day_of_year", Data: b.DayOfYear},
		proto.InputColumn{Name: "label", Data: b.Label},
	)
	return input
}

func (b *DatasetBatch) AddRow(r dataset.TableRow) {
	b.Time.Append(time.UnixMilli(r.TimestampMs).UTC())
	values := []float64{
		r.FluxLog,
		r.RollMean15m, r.RollStd15m, r.RollMin15m, r.RollMax15m, r.Delta15m,
		r.RollMean30m, r.RollStd30m, r.RollMin30m, r.RollMax30m, r.Delta30m,
		r.RollMean60m, r.RollStd60m, r.RollMin60m, r.RollMax60m, r.Delta60m,
		r.RollMean180m, r.RollStd180m, r.RollMin180m, r.RollMax180m, r.Delta180m,
	}
	for i, v := range values {
		b.Floats[i].Append(v)
	}
	b.Hour.Append(uint8(r.Hour))
	b.DayOfYear.Append(uint16(r.DayOfYear))
	b.Label.Append(int8(r.Label))
}

func flushBatch(ctx context.Context, conn *ch.Client, tableFQN string, batch *DatasetBatch) error {
	if batch.Len() == 0 {
		return nil
	}

	cols := "time"
	for _, name := range floatColumns {
		cols += ", " + name
	}
	cols += ", hour, day_of_year, label"

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES", tableFQN, cols)
	return conn.Do(ctx, ch.Query{
		Body:  query,
		Input: batch.Input(),
	})
}

func main() {
	cfg := common.DefaultConfig()

	chHost := flag.String("ch-host", fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", "dataset", "ClickHouse table")
	inPath := flag.String("in", filepath.Join(cfg.ProcessedDir(), "dataset.parquet"), "Input dataset parquet file")
	batchSize := flag.Int("batch-size", 100_000, "Rows per insert batch")
	createTable := flag.Bool("create-table", false, "Create the table if it does not exist")
	truncate := flag.Bool("truncate", false, "Truncate table before insert")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dataset-ingest v%s - Dataset ClickHouse Loader\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Loads the canonical dataset parquet file into ClickHouse\n")
		fmt.Fprintf(os.Stderr, "using the native columnar protocol.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("Dataset Ingest v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	rows, err := dataset.ReadTableRows(*inPath)
	if err != nil {
		log.Fatalf("Cannot read dataset: %v", err)
	}
	log.Printf("[%s] Loaded %d rows", filepath.Base(*inPath), len(rows))

	log.Printf("Connecting to ClickHouse at %s...", *chHost)
	conn, err := ch.Dial(ctx, ch.Options{
		Address:     *chHost,
		Database:    *chDB,
		User:        cfg.ClickHouseUser,
		Password:    cfg.ClickHousePassword,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("Table: %s", tableFQN)

	if *createTable {
		if err := conn.Do(ctx, ch.Query{Body: fmt.Sprintf(createTableDDL, tableFQN)}); err != nil {
			log.Fatalf("Create table failed: %v", err)
		}
	}
	if *truncate {
		log.Printf("Truncating table %s...", tableFQN)
		if err := conn.Do(ctx, ch.Query{Body: fmt.Sprintf("TRUNCATE TABLE %s", tableFQN)}); err != nil {
			log.Printf("Truncate warning: %v", err)
		}
	}

	startTime := time.Now()
	batch := NewDatasetBatch()
	inserted := 0

	for _, row := range rows {
		select {
		case <-ctx.Done():
			log.Fatalf("Cancelled after %d rows", inserted)
		default:
		}

		batch.AddRow(row)
		if batch.Len() >= *batchSize {
			if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
				log.Fatalf("Insert error: %v", err)
			}
			inserted += batch.Len()
			batch.Reset()
		}
	}
	if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
		log.Fatalf("Final insert error: %v", err)
	}
	inserted += batch.Len()

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Rows Inserted:   %d", inserted)
	log.Printf("Elapsed:         %v", elapsed.Round(time.Millisecond))
	log.Printf("Rate:            %.0f rows/sec", float64(inserted)/elapsed.Seconds())
	log.Println("=========================================================")
}
