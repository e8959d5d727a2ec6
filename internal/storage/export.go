package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/IshaanNene/LeadGoat/internal/types"
)

// Export writes leads to a file in the given format (json, jsonl, csv).
func Export(leads []*types.Lead, format, path string, logger *slog.Logger) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	switch format {
	case "json":
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(exportRecords(leads)); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	case "jsonl":
		enc := json.NewEncoder(f)
		for _, rec := range exportRecords(leads) {
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("encode JSONL: %w", err)
			}
		}
	case "csv":
		if err := writeCSV(f, leads); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q (valid: json, jsonl, csv)", format)
	}

	logger.Info("leads exported", "path", path, "format", format, "count", len(leads))
	return nil
}

// exportRecord is the JSON shape of an exported lead.
type exportRecord struct {
	ID                string    `json:"id"`
	IdentityKey       string    `json:"identity_key"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	Phone             string    `json:"phone,omitempty"`
	Location          string    `json:"location"`
	Website           string    `json:"website,omitempty"`
	Source            string    `json:"source"`
	Score             int       `json:"score"`
	PotentialScore    int       `json:"potential_score"`
	PotentialCategory string    `json:"potential_category,omitempty"`
	AINotes           string    `json:"ai_notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func exportRecords(leads []*types.Lead) []exportRecord {
	out := make([]exportRecord, len(leads))
	for i, l := range leads {
		out[i] = exportRecord{
			ID:                l.ID,
			IdentityKey:       l.IdentityKey,
			Name:              l.Name,
			Category:          l.Category,
			Phone:             l.Phone,
			Location:          l.Location,
			Website:           l.Website,
			Source:            string(l.Source),
			Score:             l.Score,
			PotentialScore:    l.PotentialScore,
			PotentialCategory: string(l.PotentialCategory),
			AINotes:           l.AINotes,
			CreatedAt:         l.CreatedAt,
			UpdatedAt:         l.UpdatedAt,
		}
	}
	return out
}

func writeCSV(f *os.File, leads []*types.Lead) error {
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"id", "identity_key", "name", "category", "phone", "location",
		"website", "source", "score", "potential_score", "potential_category",
		"ai_notes", "created_at", "updated_at",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, l := range leads {
		row := []string{
			l.ID, l.IdentityKey, l.Name, l.Category, l.Phone, l.Location,
			l.Website, string(l.Source), strconv.Itoa(l.Score),
			strconv.Itoa(l.PotentialScore), string(l.PotentialCategory),
			l.AINotes,
			l.CreatedAt.Format(time.RFC3339),
			l.UpdatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	return nil
}
