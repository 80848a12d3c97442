package report

import (
	"github.com/factbase/factbase/internal/model"
)

// Exporter writes a transcript corpus in one output format.
//
// Design decision: We use an interface so the same corpus walk can feed
// several destinations (files, stdout, network) with the same API, and
// so formats can be added without touching the export driver.
type Exporter interface {
	// Export writes the transcripts to the configured destination.
	// Returns the number of records written and any error encountered.
	Export(transcripts []*model.Transcript) (int, error)
}

// MultiExporter feeds the same corpus to several Exporters.
type MultiExporter struct {
	exporters []Exporter
}

// NewMultiExporter creates an Exporter that writes to all provided
// Exporters. It stops on the first error encountered.
func NewMultiExporter(exporters ...Exporter) *MultiExporter {
	return &MultiExporter{exporters: exporters}
}

// Export writes the corpus through every configured exporter and
// returns the total record count across them.
func (m *MultiExporter) Export(transcripts []*model.Transcript) (int, error) {
	var total int
	for _, e := range m.exporters {
		n, err := e.Export(transcripts)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
