// Command muleguard-analyze reads a transaction CSV file and prints the
// resulting AnalysisResult (or EnrichedReport, with -watchlist) as JSON.
// It owns no detection logic; muleguard.Analyze does all the work.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"muleguard"
)

func main() {
	csvPath := flag.String("csv", "", "path to transaction CSV file (required)")
	watchlistPath := flag.String("watchlist", "", "optional path to a watchlist bbolt file")
	verbose := flag.Bool("v", false, "enable debug-level pipeline logging")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("muleguard-analyze: -csv is required")
	}
	if *verbose {
		muleguard.SetLogLevel(zerolog.DebugLevel)
	}

	transactions, err := readTransactionCSV(*csvPath)
	if err != nil {
		log.Fatalf("muleguard-analyze: %v", err)
	}

	var output interface{}
	if *watchlistPath != "" {
		wl, err := muleguard.OpenWatchlist(*watchlistPath)
		if err != nil {
			log.Fatalf("muleguard-analyze: %v", err)
		}
		defer wl.Close()

		report, err := muleguard.Investigate(transactions, wl)
		if err != nil {
			log.Fatalf("muleguard-analyze: %v", err)
		}
		output = report
	} else {
		result, err := muleguard.Analyze(transactions)
		if err != nil {
			log.Fatalf("muleguard-analyze: %v", err)
		}
		output = result
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		log.Fatalf("muleguard-analyze: encode result: %v", err)
	}
}

// readTransactionCSV parses transaction_id, sender_id, receiver_id, amount,
// timestamp rows. Rows with an unparseable amount are discarded (spec §6,
// the caller's responsibility); rows with an unparseable timestamp are kept
// but excluded from temporal windowing (spec §7).
func readTransactionCSV(path string) ([]muleguard.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"transaction_id", "sender_id", "receiver_id", "amount", "timestamp"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv missing required column %q", required)
		}
	}

	var transactions []muleguard.Transaction
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		amount, err := strconv.ParseFloat(record[cols["amount"]], 64)
		if err != nil {
			continue
		}

		id := record[cols["transaction_id"]]
		sender := record[cols["sender_id"]]
		receiver := record[cols["receiver_id"]]

		ts, err := time.Parse(time.RFC3339, record[cols["timestamp"]])
		if err != nil {
			transactions = append(transactions, muleguard.NewTransactionWithInvalidTimestamp(id, sender, receiver, amount, time.Time{}))
			continue
		}
		transactions = append(transactions, muleguard.NewTransaction(id, sender, receiver, amount, ts))
	}
	return transactions, nil
}
