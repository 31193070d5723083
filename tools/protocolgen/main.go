// Command protocolgen emits a JSON schema for every wire message kind. The
// output documents the protocol for non-Go clients and doubles as a review
// artifact: a schema diff shows exactly what a protocol change touches.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/feralbyte/nightswarm-mp/shared/netconfig"
	"github.com/feralbyte/nightswarm-mp/shared/protocol"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchemas()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

type protocolDoc struct {
	Protocol string                        `json:"protocol"`
	Version  string                        `json:"version"`
	Messages map[string]*jsonschema.Schema `json:"messages"`
}

func buildSchemas() protocolDoc {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	messages := make(map[string]*jsonschema.Schema, len(protocol.Kinds))
	for _, kind := range protocol.Kinds {
		messages[kind.String()] = reflector.Reflect(protocol.New(kind))
	}

	return protocolDoc{
		Protocol: "nightswarm",
		Version:  netconfig.ProtocolVersion,
		Messages: messages,
	}
}

func writeSchema(outPath string, doc protocolDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
