// Package server implements the gRPC surface. Handlers validate input, map
// layer errors onto status codes and delegate to repositories and services.
package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/anudeep227/personal-health-manager/internal/utils"
)

// optStr converts an empty proto string to a nil pointer.
func optStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optF64(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func optInt(v int32) *int {
	if v == 0 {
		return nil
	}
	i := int(v)
	return &i
}

// parseDateRange parses optional YYYY-MM-DD bounds shared by the list and
// export endpoints.
func parseDateRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fd := strings.TrimSpace(fromStr); fd != "" {
		t, err := utils.ParseYMD(fd)
		if err != nil {
			return nil, nil, fmt.Errorf("from_date invalid (YYYY-MM-DD): %w", err)
		}
		from = &t
	}
	if td := strings.TrimSpace(toStr); td != "" {
		t, err := utils.ParseYMD(td)
		if err != nil {
			return nil, nil, fmt.Errorf("to_date invalid (YYYY-MM-DD): %w", err)
		}
		to = &t
	}
	return from, to, nil
}
