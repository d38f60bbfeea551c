package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/openclimate-tools/climateview/internal/model"
)

// Column names expected in catalog datasets. Header matching is
// case-insensitive; column order varies between inventories.
const (
	colActor     = "actor"
	colYear      = "year"
	colEmissions = "total_emissions"
	colName      = "name"
)

func parseEmissionsCSV(data []byte) ([]model.EmissionsRecord, int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	cols, err := headerIndex(reader, colActor, colYear, colEmissions)
	if err != nil {
		return nil, 0, err
	}

	var records []model.EmissionsRecord
	var skipped int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		actor := strings.TrimSpace(field(row, cols[colActor]))
		year, yearErr := strconv.Atoi(strings.TrimSpace(field(row, cols[colYear])))
		total, totalErr := strconv.ParseFloat(strings.TrimSpace(field(row, cols[colEmissions])), 64)
		if actor == "" || yearErr != nil || totalErr != nil {
			skipped++
			continue
		}

		records = append(records, model.EmissionsRecord{
			Actor:          actor,
			Year:           year,
			TotalEmissions: total,
		})
	}
	return records, skipped, nil
}

func parseActorCSV(data []byte) (map[string]string, int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	cols, err := headerIndex(reader, colActor, colName)
	if err != nil {
		return nil, 0, err
	}

	names := make(map[string]string)
	var skipped int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		id := strings.TrimSpace(field(row, cols[colActor]))
		name := strings.TrimSpace(field(row, cols[colName]))
		if id == "" || name == "" {
			skipped++
			continue
		}
		names[id] = name
	}
	return names, skipped, nil
}

// headerIndex reads the header row and locates the required columns
func headerIndex(reader *csv.Reader, required ...string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return index, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
