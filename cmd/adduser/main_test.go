package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUserReadsPasswordFromStdin(t *testing.T) {
	dsn := "sqlite:" + filepath.Join(t.TempDir(), "users.db")
	var out bytes.Buffer

	err := run(context.Background(),
		[]string{"-name", "Ann", "-email", "ann@example.com", "-db", dsn},
		strings.NewReader("password123\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Created user 1 <ann@example.com>")

	err = run(context.Background(),
		[]string{"-name", "Ann", "-email", "ann@example.com", "-password", "password123", "-db", dsn},
		strings.NewReader(""), &out)
	assert.ErrorContains(t, err, "already exists")
}

func TestAddUserValidatesBeforeConnecting(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(),
		[]string{"-name", "Ann", "-email", "not-an-email", "-password", "short", "-db", "bogus://"},
		strings.NewReader(""), &out)

	assert.EqualError(t, err, "invalid account details")
	assert.Contains(t, out.String(), "email: The email field must be a valid email address.")
	assert.Contains(t, out.String(), "password: The password field must be at least 8 characters.")
}
