package migrate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/orgmig-cli/internal/logger"
)

// Override is one explicit source-login to destination-login pair supplied by
// the operator. Overrides take precedence over automatically resolved pairs.
type Override struct {
	Source string
	Dest   string
}

// ReadOverrides parses an override CSV with columns "source,dest". A header
// row is optional. Incomplete rows and duplicate source logins are discarded
// with a warning; they never abort the run.
func ReadOverrides(r io.Reader) ([]Override, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var overrides []Override
	seen := make(map[string]bool)

	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read override row %d: %w", line, err)
		}

		if line == 1 && len(record) >= 1 && strings.EqualFold(strings.TrimSpace(record[0]), "source") {
			continue
		}

		if len(record) < 2 || strings.TrimSpace(record[0]) == "" || strings.TrimSpace(record[1]) == "" {
			logger.Warn("override row %d is incomplete, skipping: %v", line, record)
			continue
		}

		src := strings.TrimSpace(record[0])
		key := strings.ToLower(src)
		if seen[key] {
			logger.Warn("override row %d duplicates source %q, skipping", line, src)
			continue
		}
		seen[key] = true

		overrides = append(overrides, Override{
			Source: src,
			Dest:   strings.TrimSpace(record[1]),
		})
	}

	return overrides, nil
}

// ApplyOverrides merges explicit overrides into an auto-resolved login map.
// An override for a source login already present replaces the auto-resolved
// destination.
func ApplyOverrides(mapping map[string]string, overrides []Override) map[string]string {
	merged := make(map[string]string, len(mapping)+len(overrides))
	for k, v := range mapping {
		merged[k] = v
	}
	for _, o := range overrides {
		merged[strings.ToLower(o.Source)] = o.Dest
	}
	return merged
}
