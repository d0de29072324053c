package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/models"
)

// PriorityListRepository reads the externally curated asset priority lists.
// Each tier ships as a flat CSV with a BFM column; the file for a tier may
// be absent, in which case that tier simply contributes no overrides.
type PriorityListRepository struct {
	logger *zap.Logger
}

// NewPriorityListRepository creates a priority list repository.
func NewPriorityListRepository(logger *zap.Logger) *PriorityListRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriorityListRepository{logger: logger}
}

// Load builds the overrides value from tier files in order: paths[0] is
// tier 1, paths[1] tier 2, and so on. Later tiers never demote an asset
// already listed in an earlier (higher) tier.
func (r *PriorityListRepository) Load(paths []string) models.PriorityOverrides {
	byBFM := make(map[string]int)
	for i, path := range paths {
		tier := i + 1
		count, err := r.loadFile(path, tier, byBFM)
		if err != nil {
			if os.IsNotExist(err) {
				r.logger.Info("priority file not found, tier contributes no overrides",
					zap.String("path", path), zap.Int("tier", tier))
			} else {
				r.logger.Warn("failed to load priority file",
					zap.String("path", path), zap.Int("tier", tier), zap.Error(err))
			}
			continue
		}
		r.logger.Info("loaded priority assets",
			zap.String("path", path), zap.Int("tier", tier), zap.Int("count", count))
	}
	return models.NewPriorityOverrides(byBFM)
}

func (r *PriorityListRepository) loadFile(path string, tier int, byBFM map[string]int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	bfmCol := -1
	for i, name := range header {
		// Files exported from spreadsheets often lead with a UTF-8 BOM.
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(name), "\uFEFF"), "BFM") {
			bfmCol = i
			break
		}
	}
	if bfmCol < 0 {
		return 0, fmt.Errorf("no BFM column in %s", path)
	}

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.logger.Warn("skipping malformed priority row", zap.String("path", path), zap.Error(err))
			continue
		}
		if bfmCol >= len(record) {
			continue
		}
		bfmNo := normalizeBFM(record[bfmCol])
		if bfmNo == "" {
			continue
		}
		if existing, ok := byBFM[bfmNo]; ok && existing <= tier {
			continue
		}
		byBFM[bfmNo] = tier
		count++
	}
	return count, nil
}

// normalizeBFM trims whitespace and collapses numeric identifiers that a
// spreadsheet stored as floats ("10423.0") back to their integer form.
func normalizeBFM(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return trimmed
}
