// Command adduser creates an account without going through the API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gogofit/backend/internal/apperr"
	"github.com/gogofit/backend/internal/auth"
	"github.com/gogofit/backend/internal/db"
	"github.com/gogofit/backend/internal/logging"
	"github.com/gogofit/backend/internal/validation"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

type account struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

func main() {
	_ = godotenv.Load(".env.local")
	logging.Setup("warn", "console")

	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "adduser: %v\n", err)
		os.Exit(1)
	}
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise.
func readPassword(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	name := fs.String("name", "", "display name (required)")
	email := fs.String("email", "", "login email (required)")
	password := fs.String("password", "", "password; prompted for when omitted")
	dsn := fs.String("db", os.Getenv("DATABASE_URL"), "database URL (default: env DATABASE_URL)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *password == "" {
		p, err := readPassword(in, out)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		*password = p
	}

	acct := account{Name: strings.TrimSpace(*name), Email: strings.TrimSpace(*email), Password: *password}
	if err := validation.Struct(acct); err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			for field, msgs := range e.Fields {
				for _, m := range msgs {
					fmt.Fprintf(out, "%s: %s\n", field, m)
				}
			}
		}
		return errors.New("invalid account details")
	}

	if *dsn == "" {
		return errors.New("-db not provided and DATABASE_URL not set")
	}
	d, err := db.Open(*dsn, db.Options{Schema: os.Getenv("DB_SCHEMA"), Logger: logging.GormLogger(log.Logger)})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(d) }()

	if err := auth.Init(d); err != nil {
		return err
	}

	u, err := auth.CreateUser(ctx, d, acct.Name, acct.Email, acct.Password)
	if errors.Is(err, auth.ErrEmailTaken) {
		return fmt.Errorf("an account with email %s already exists", acct.Email)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created user %d <%s>\n", u.ID, u.Email)
	return nil
}
