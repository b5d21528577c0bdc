package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// readBusinesses loads a .jsonl or .parquet file.
func readBusinesses(path string) ([]seedBusiness, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		rows, err := parquet.ReadFile[offeringRow](path)
		if err != nil {
			return nil, fmt.Errorf("read parquet %s: %w", path, err)
		}
		return groupRows(rows), nil
	case ".jsonl", ".ndjson":
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return decodeJSONLines(f)
	default:
		return nil, fmt.Errorf("unsupported input %s: want .jsonl or .parquet", path)
	}
}

// decodeJSONLines reads one business per line. Blank lines are skipped.
func decodeJSONLines(r io.Reader) ([]seedBusiness, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out []seedBusiness
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var b seedBusiness
		if err := json.Unmarshal([]byte(text), &b); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if b.ID == "" {
			return nil, fmt.Errorf("line %d: business id is required", line)
		}
		out = append(out, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return out, nil
}

func itoa(i int) string { return strconv.Itoa(i) }
