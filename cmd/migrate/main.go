// Command migrate applies the embedded SQL migrations to a postgres database.
//
//	migrate up
//	migrate down [N]     (N defaults to 1)
//	migrate version
//	migrate force V
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gogofit/backend/internal/db"
	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
)

var errUsage = errors.New("usage: migrate [-dsn URL] [-schema NAME] up | down [N] | version | force V")

func main() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

// command is the parsed form of the positional arguments.
type command struct {
	name string
	n    int
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errUsage
	}
	c := command{name: args[0]}
	switch c.name {
	case "up", "version":
		if len(args) != 1 {
			return command{}, errUsage
		}
	case "down":
		c.n = 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return command{}, fmt.Errorf("down: N must be a positive integer")
			}
			c.n = n
		} else if len(args) > 2 {
			return command{}, errUsage
		}
	case "force":
		if len(args) != 2 {
			return command{}, errUsage
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("force: V must be an integer")
		}
		c.n = v
	default:
		return command{}, errUsage
	}
	return c, nil
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dsn := fs.String("dsn", os.Getenv("DATABASE_URL"), "postgres URL (default: env DATABASE_URL)")
	schema := fs.String("schema", os.Getenv("DB_SCHEMA"), "postgres schema to migrate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd, err := parseCommand(fs.Args())
	if err != nil {
		return err
	}
	if *dsn == "" {
		return fmt.Errorf("-dsn not provided and DATABASE_URL not set")
	}

	m, err := db.NewMigrator(*dsn, *schema)
	if err != nil {
		return err
	}
	defer m.Close()

	switch cmd.name {
	case "up":
		if err := db.MigrateUp(m); err != nil {
			return err
		}
	case "down":
		if err := m.Steps(-cmd.n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "force":
		if err := m.Force(cmd.n); err != nil {
			return err
		}
	}

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(stdout, "version: none")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "version: %d dirty: %t\n", v, dirty)
	return nil
}
