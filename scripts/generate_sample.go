//go:build ignore

// generate_sample fills a storage backend with deterministic sample notes:
//
//	go run ./scripts/generate_sample.go -url sqlite:///tmp/ocean-sample.db -n 500
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	mrand "math/rand"
	"strings"
	"time"

	"github.com/mithrel/oceannotes/internal/kv"
	"github.com/mithrel/oceannotes/internal/notes"
)

func main() {
	url := flag.String("url", "mem://", "storage url to write to")
	total := flag.Int("n", 500, "number of notes")
	flag.Parse()

	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))

	words := []string{"ocean", "tide", "harbor", "reef", "current", "drift", "shore", "kelp", "swell", "buoy"}
	base := time.Now().UTC()
	clock := base

	ctx := context.Background()
	backend, err := kv.Open(ctx, *url)
	if err != nil {
		log.Fatal(err)
	}
	defer backend.Close()
	seq := 0
	store := notes.NewStore(backend,
		notes.WithSeeds(nil),
		notes.WithClock(func() time.Time { return clock }),
		notes.WithIDFunc(func() string { seq++; return fmt.Sprintf("sample-%04d", seq) }),
	)
	if err := store.EnsureSeeded(ctx); err != nil {
		log.Fatal(err)
	}

	for i := 0; i < *total; i++ {
		// Stagger timestamps backwards to look natural
		clock = base.Add(-time.Duration(30*(*total-i)+mr.Intn(60)) * time.Minute)
		k := 1 + mr.Intn(4)
		picked := make([]string, k)
		for j := range picked {
			picked[j] = words[mr.Intn(len(words))]
		}
		body := fmt.Sprintf("# Sample %03d\n\nAbout **%s**.\n\n- %s", i+1, picked[0], strings.Join(picked, "\n- "))
		n, err := store.Create(ctx, fmt.Sprintf("Sample Note %03d", i+1), body)
		if err != nil {
			log.Fatal(err)
		}
		// Some notes get later edits; most keep the same timestamp
		if mr.Float64() < 0.3 {
			clock = clock.Add(time.Duration(1+mr.Intn(180)) * time.Minute)
			extra := body + "\n\n*edited*"
			if _, err := store.Update(ctx, n.ID, notes.Patch{Content: &extra}); err != nil {
				log.Fatal(err)
			}
		}
	}
	fmt.Printf("wrote %d notes to %s\n", *total, *url)
}
