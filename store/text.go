package store

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pulselab/pulse/model"
)

// ParseText reads whitespace-delimited numeric rows into records. The first
// nkeys fields of each row become the record key and the remainder the
// vector. With nkeys == 0 rows get linear one-based keys in input order.
// Blank lines and lines starting with '#' are skipped.
func ParseText(r io.Reader, nkeys int) ([]model.Record, error) {
	if nkeys < 0 {
		return nil, fmt.Errorf("nkeys must be non-negative, got %d", nkeys)
	}

	var records []model.Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) <= nkeys {
			return nil, fmt.Errorf("line %d: %d fields, need more than %d key fields", lineNo, len(fields), nkeys)
		}

		key := make(model.Key, nkeys)
		for i := 0; i < nkeys; i++ {
			k, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: key field %d: %w", lineNo, i, err)
			}
			key[i] = k
		}
		if nkeys == 0 {
			key = model.Key{uint64(len(records) + 1)}
		}

		vec := make([]float64, len(fields)-nkeys)
		for i, f := range fields[nkeys:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: value field %d: %w", lineNo, i, err)
			}
			vec[i] = v
		}
		records = append(records, model.Record{Key: key, Vector: vec})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
