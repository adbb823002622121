package storage

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/vetcontent/internal/models"
)

// SeedFile is the YAML layout accepted by the seed command.
type SeedFile struct {
	Records []*models.DbContentRecord `yaml:"records"`
}

// LoadSeed reads records from a YAML seed file.
func LoadSeed(path string) ([]*models.DbContentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, rec := range f.Records {
		if rec == nil {
			return nil, fmt.Errorf("seed record %d is empty", i)
		}
		if _, err := tableFor(rec.Collection); err != nil {
			return nil, fmt.Errorf("seed record %d (%s): %w", i, rec.Slug, err)
		}
		loc, ok := models.ParseLocale(string(rec.Lang))
		if !ok {
			return nil, fmt.Errorf("seed record %d (%s): invalid lang %q", i, rec.Slug, rec.Lang)
		}
		rec.Lang = loc
		if rec.Slug == "" || rec.Title == "" {
			return nil, fmt.Errorf("seed record %d: slug and title are required", i)
		}
	}
	return f.Records, nil
}

// Seed upserts every record into w and returns how many were written.
func Seed(ctx context.Context, w Writer, records []*models.DbContentRecord) (int, error) {
	for i, rec := range records {
		if err := w.Upsert(ctx, rec); err != nil {
			return i, err
		}
	}
	return len(records), nil
}
