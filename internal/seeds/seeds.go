// Package seeds loads the default food catalog.
package seeds

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/gogofit/backend/internal/foods"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Result counts what a seeding run did.
type Result struct {
	Created int
	Skipped int
}

// ParseFoods decodes a YAML list of foods.
func ParseFoods(data []byte) ([]foods.Food, error) {
	var items []foods.Food
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("seeds: parse foods: %w", err)
	}
	for i, f := range items {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("seeds: food #%d has no name", i+1)
		}
		for field, v := range map[string]float64{
			"calories":      f.Calories,
			"sugar":         f.Sugar,
			"protein":       f.Protein,
			"carbohydrates": f.Carbohydrates,
			"fat":           f.Fat,
			"saturated_fat": f.SaturatedFat,
		} {
			if v < 0 {
				return nil, fmt.Errorf("seeds: food %q has negative %s", f.Name, field)
			}
		}
	}
	return items, nil
}

func LoadFoods(path string) ([]foods.Food, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return ParseFoods(data)
}

// SeedFoods inserts every food whose name is not in the catalog yet.
// Existing entries are left untouched.
func SeedFoods(ctx context.Context, s *foods.Store, items []foods.Food) (Result, error) {
	var res Result
	for _, f := range items {
		taken, err := s.NameTaken(ctx, f.Name, 0)
		if err != nil {
			return res, fmt.Errorf("DB error on food %s: %w", f.Name, err)
		}
		if taken {
			log.Warn().Str("name", f.Name).Msg("Food exists, skipping")
			res.Skipped++
			continue
		}

		f.ID = 0
		if err := s.Create(ctx, &f); err != nil {
			return res, fmt.Errorf("failed to create food %s: %w", f.Name, err)
		}
		res.Created++
	}

	log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("Seeded foods")
	return res, nil
}

// SeedAll runs every seeder against d.
func SeedAll(ctx context.Context, d *gorm.DB, foodFile string) error {
	items, err := LoadFoods(foodFile)
	if err != nil {
		return err
	}
	_, err = SeedFoods(ctx, foods.NewStore(d), items)
	return err
}
