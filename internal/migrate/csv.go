package migrate

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Fixed column sets for the mapping files. The apply side reads the same
// columns back, so headers are part of the contract.
var (
	teamMappingHeader      = []string{"Team", "Slug", "Role", "Source", "Destination"}
	repoMappingHeader      = []string{"Repository", "Permission", "Source", "Destination"}
	mannequinMappingHeader = []string{"mannequin-user", "mannequin-id", "target-user"}
)

// WriteTeamMappingCSV writes the team mapping export.
func WriteTeamMappingCSV(w io.Writer, rows []TeamMappingRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(teamMappingHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.Team, row.Slug, row.Role, row.Source, row.Destination}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTeamMappingCSV reads a team mapping file produced by
// WriteTeamMappingCSV.
func ReadTeamMappingCSV(r io.Reader) ([]TeamMappingRow, error) {
	records, err := readMappingCSV(r, teamMappingHeader)
	if err != nil {
		return nil, err
	}
	rows := make([]TeamMappingRow, len(records))
	for i, rec := range records {
		rows[i] = TeamMappingRow{
			Team:        rec[0],
			Slug:        rec[1],
			Role:        rec[2],
			Source:      rec[3],
			Destination: rec[4],
		}
	}
	return rows, nil
}

// WriteRepoMappingCSV writes the repository-access mapping export.
func WriteRepoMappingCSV(w io.Writer, rows []RepoMappingRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(repoMappingHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.Repository, row.Permission, row.Source, row.Destination}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRepoMappingCSV reads a repository-access mapping file produced by
// WriteRepoMappingCSV.
func ReadRepoMappingCSV(r io.Reader) ([]RepoMappingRow, error) {
	records, err := readMappingCSV(r, repoMappingHeader)
	if err != nil {
		return nil, err
	}
	rows := make([]RepoMappingRow, len(records))
	for i, rec := range records {
		rows[i] = RepoMappingRow{
			Repository:  rec[0],
			Permission:  rec[1],
			Source:      rec[2],
			Destination: rec[3],
		}
	}
	return rows, nil
}

// WriteMannequinMappingCSV writes the mannequin remap export.
func WriteMannequinMappingCSV(w io.Writer, rows []MannequinMappingRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(mannequinMappingHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.MannequinUser, row.MannequinID, row.TargetUser}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// readMappingCSV reads all rows after validating the header and row widths.
func readMappingCSV(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range header {
		if first[i] != col {
			return nil, fmt.Errorf("unexpected header %v, want %v", first, header)
		}
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
