package storage

import (
	"encoding/json"
	"io"
)

// ExportData is a stored run as one JSON document.
type ExportData struct {
	Run     RunMetadata          `json:"run"`
	Steps   int                  `json:"steps"`
	Columns []string             `json:"columns"`
	Series  map[string][]float64 `json:"series"`
}

// ExportJSON writes runID's metadata and series to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:     *meta,
		Steps:   series.Len(),
		Columns: series.Columns,
		Series:  series.Data,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
