// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Command gen-schema writes the JSON Schema for the game-content file.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
)

func main() {
	schema, err := content.GenerateSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join("schemas", "content.schema.json")
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, schema, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
