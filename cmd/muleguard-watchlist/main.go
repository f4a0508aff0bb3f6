// Command muleguard-watchlist manages a persisted Watchlist bbolt file:
// add, list, and remove legitimacy keywords or sanctioned account
// identifiers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"muleguard"
)

func main() {
	dbPath := flag.String("db", "", "path to the watchlist bbolt file (required)")
	flag.Parse()

	if *dbPath == "" || flag.NArg() < 1 {
		usage()
	}

	wl, err := muleguard.OpenWatchlist(*dbPath)
	if err != nil {
		log.Fatalf("muleguard-watchlist: %v", err)
	}
	defer wl.Close()

	switch flag.Arg(0) {
	case "add":
		runAdd(wl, flag.Args()[1:])
	case "list":
		runList(wl, flag.Args()[1:])
	case "remove":
		runRemove(wl, flag.Args()[1:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: muleguard-watchlist -db <path> <add|list|remove> ...")
	fmt.Fprintln(os.Stderr, "  add <keyword|sanctioned> <value> [rationale]")
	fmt.Fprintln(os.Stderr, "  list <keyword|sanctioned>")
	fmt.Fprintln(os.Stderr, "  remove <keyword|sanctioned> <value>")
	os.Exit(2)
}

func parseKind(s string) muleguard.WatchlistKind {
	switch s {
	case "keyword":
		return muleguard.WatchlistKindKeyword
	case "sanctioned":
		return muleguard.WatchlistKindSanctioned
	default:
		usage()
		return ""
	}
}

func runAdd(wl *muleguard.Watchlist, args []string) {
	if len(args) < 2 {
		usage()
	}
	entry := muleguard.WatchlistEntry{
		Kind:    parseKind(args[0]),
		Value:   args[1],
		AddedAt: time.Now(),
	}
	if len(args) > 2 {
		entry.Rationale = args[2]
	}
	if err := wl.Put(entry); err != nil {
		log.Fatalf("muleguard-watchlist: %v", err)
	}
	fmt.Printf("added %s %q\n", entry.Kind, entry.Value)
}

func runList(wl *muleguard.Watchlist, args []string) {
	if len(args) < 1 {
		usage()
	}
	entries, err := wl.List(parseKind(args[0]))
	if err != nil {
		log.Fatalf("muleguard-watchlist: %v", err)
	}
	for _, e := range entries {
		fmt.Printf("%s\t%s\t%s\n", e.Value, e.AddedAt.Format(time.RFC3339), e.Rationale)
	}
}

func runRemove(wl *muleguard.Watchlist, args []string) {
	if len(args) < 2 {
		usage()
	}
	if err := wl.Delete(parseKind(args[0]), args[1]); err != nil {
		log.Fatalf("muleguard-watchlist: %v", err)
	}
	fmt.Printf("removed %s %q\n", args[0], args[1])
}
