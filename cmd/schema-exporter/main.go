// Command schema-exporter renders the wire schema of every registered
// message type as a JSON Schema document, one file per type plus one for the
// envelope. Each registered example is validated against its schema before
// anything is written, so a drift between the Go types and the documents
// fails the export instead of shipping a stale schema.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aoscloud/aos-protocols/unit"
)

func main() {
	outDir := flag.String("out", "./schemas", "Output directory for schema documents")
	flag.Parse()

	log.Printf("Schema Exporter")
	log.Printf("  Output dir: %s", *outDir)

	documents, err := buildDocuments(unit.DefaultRegistry())
	if err != nil {
		log.Fatalf("Failed to build schema documents: %v", err)
	}
	log.Printf("Found %d message types", len(documents)-1)

	for _, document := range documents {
		if document.Example == nil {
			continue
		}
		if err := validateExample(document); err != nil {
			log.Fatalf("Example validation failed for %s: %v", document.Name, err)
		}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	for _, document := range documents {
		outFile := filepath.Join(*outDir, fmt.Sprintf("%s.v%d.json", document.Name, unit.ProtocolVersion))
		if err := writeDocument(outFile, document); err != nil {
			log.Fatalf("Failed to write schema for %s: %v", document.Name, err)
		}
		log.Printf("  Generated: %s", outFile)
	}

	log.Printf("Schema export complete")
}
