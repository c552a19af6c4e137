package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/forgo/dinmore/api/internal/middleware"
)

func main() {
	// Flags for customization
	key := flag.String("key", "", "Admin key to hash (default: generate a random key)")
	stdin := flag.Bool("stdin", false, "Read the admin key from stdin")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	adminKey := *key
	generated := false
	switch {
	case *stdin:
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(os.Stderr, "Error reading key from stdin: %v\n", err)
			os.Exit(1)
		}
		adminKey = strings.TrimSpace(line)
	case adminKey == "":
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating key: %v\n", err)
			os.Exit(1)
		}
		adminKey = base64.RawURLEncoding.EncodeToString(buf)
		generated = true
	}

	if adminKey == "" {
		fmt.Fprintln(os.Stderr, "Error: admin key must not be empty")
		os.Exit(1)
	}

	hash, err := middleware.HashAdminKey(adminKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing key: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		output := map[string]any{"admin_key_hash": hash}
		if generated {
			output["admin_key"] = adminKey
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output)
		return
	}

	fmt.Println("Admin Key Hash Generated")
	fmt.Println("========================")
	if generated {
		fmt.Println("Key (store it now, it is not recoverable):")
		fmt.Println(adminKey)
		fmt.Println()
	}
	fmt.Println("Hash:")
	fmt.Println(hash)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  export ADMIN_KEY_HASH='%s'\n", hash)
	fmt.Printf("  curl -H '%s: <key>' http://localhost:8080/v1/devices\n", middleware.AdminKeyHeader)
}
