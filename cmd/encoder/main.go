// Command encoder reads a JSON object from stdin and prints it rendered
// as a freshly-built TOML document, exercising Container.Append and
// ItemFrom's coercion rules directly from plain Go values.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	tomledit "github.com/maurice/tomledit"
)

func main() {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading stdin: %v\n", err)
		os.Exit(1)
	}

	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing JSON: %v\n", err)
		os.Exit(1)
	}

	doc := tomledit.NewDocument()
	for _, key := range sortedKeys(input) {
		if err := doc.Append(key, input[key]); err != nil {
			fmt.Fprintf(os.Stderr, "error appending %q: %v\n", key, err)
			os.Exit(1)
		}
	}

	fmt.Print(doc.String())
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
