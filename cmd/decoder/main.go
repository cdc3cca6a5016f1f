// Command decoder reads TOML from stdin and prints its semantic
// projection as JSON, for scripting and for cross-checking against other
// TOML implementations.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	tomledit "github.com/maurice/tomledit"
)

func main() {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading stdin: %v\n", err)
		os.Exit(1)
	}

	doc, err := tomledit.Parse(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	out, err := json.Marshal(doc.Value())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshaling JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
