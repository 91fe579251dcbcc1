// Package main writes the OpenAPI document of the Open Prices API. It
// registers the shared routes with stub handlers, so no database or
// configuration is needed.
//
// Usage:
//
//	go run ./cmd/open-prices-openapi > openapi.json
//	go run ./cmd/open-prices-openapi -yaml > openapi.yaml
//	go run ./cmd/open-prices-openapi -output openapi.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/openfoodfacts/open-prices/internal/http/routes"
	"github.com/openfoodfacts/open-prices/internal/version"
)

func main() {
	outputFile := flag.String("output", "", "Output file path (default: stdout)")
	outputYAML := flag.Bool("yaml", false, "Output as YAML instead of JSON")
	baseURL := flag.String("base-url", "https://prices.openfoodfacts.org", "Public origin of the server")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().Short())
		return
	}

	data, err := generate(*baseURL, *outputYAML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating OpenAPI document: %v\n", err)
		os.Exit(1)
	}

	if *outputFile == "" {
		_, _ = io.WriteString(os.Stdout, string(data))
		return
	}
	if err := os.WriteFile(*outputFile, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing to file: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "OpenAPI document written to %s\n", *outputFile)
}

// generate renders the OpenAPI document as JSON, or YAML when asYAML is set.
func generate(baseURL string, asYAML bool) ([]byte, error) {
	// The router only collects operations; nothing is served.
	api := humachi.New(chi.NewRouter(), routes.NewHumaConfig(baseURL))
	routes.Register(api, routes.StubHandlers())

	doc := api.OpenAPI()
	if asYAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}
