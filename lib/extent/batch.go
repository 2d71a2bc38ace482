// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import "fmt"

// BatchLimit is how many extents fit in one store record: Discord
// caps a message at ten attachments.
const BatchLimit = 10

// Batch groups extents into consecutive runs of at most limit
// entries, preserving order. An empty input yields a single empty
// batch so that every source file, including an empty one, maps to at
// least one record.
func Batch(extents []string, limit int) ([][]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("batch limit must be positive, got %d", limit)
	}
	if len(extents) == 0 {
		return [][]string{nil}, nil
	}

	batches := make([][]string, 0, (len(extents)+limit-1)/limit)
	for start := 0; start < len(extents); start += limit {
		batches = append(batches, extents[start:min(start+limit, len(extents))])
	}
	return batches, nil
}
