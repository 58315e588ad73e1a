// Command seed loads the default food catalog into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gogofit/backend/internal/db"
	"github.com/gogofit/backend/internal/foods"
	"github.com/gogofit/backend/internal/logging"
	"github.com/gogofit/backend/internal/seeds"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load(".env.local")
	logging.Setup(envOr("LOG_LEVEL", "info"), envOr("LOG_FORMAT", "console"))

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("file", envOr("FOOD_SEED_FILE", "data/foods.yaml"), "YAML food catalog")
	dsn := fs.String("dsn", os.Getenv("DATABASE_URL"), "database URL (default: env DATABASE_URL)")
	dryRun := fs.Bool("dry-run", false, "parse and validate only; no DB writes")
	migrate := fs.Bool("migrate", true, "create the foods table when it is missing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := seeds.LoadFoods(*file)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Loaded %d foods from %s\n", len(items), *file)

	if *dryRun {
		for _, f := range items {
			fmt.Fprintf(stdout, "  %s (%.0f kcal)\n", f.Name, f.Calories)
		}
		fmt.Fprintln(stdout, "Dry run complete. No changes made.")
		return nil
	}

	if *dsn == "" {
		return fmt.Errorf("-dsn not provided and DATABASE_URL not set")
	}
	d, err := db.Open(*dsn, db.Options{Schema: os.Getenv("DB_SCHEMA"), Logger: logging.GormLogger(log.Logger)})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(d) }()

	if *migrate {
		if err := foods.Init(d); err != nil {
			return err
		}
	}

	res, err := seeds.SeedFoods(ctx, foods.NewStore(d), items)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Created %d foods, skipped %d existing\n", res.Created, res.Skipped)
	return nil
}
