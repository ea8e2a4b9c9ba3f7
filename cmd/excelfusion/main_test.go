package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopalraj000/excelfusion/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "A.csv")
	b := filepath.Join(dir, "B.csv")
	require.NoError(t, os.WriteFile(a, []byte("id,name\n1,a\n2,b\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("id,val\n2,10\n3,20\n"), 0o644))
	out := filepath.Join(dir, "out", "merged.csv")

	cfg, err := config.ParseFlags([]string{"-key", "id", "-out", out, a, b})
	require.NoError(t, err)

	merged, stats, err := run(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, 3, merged.NumRows())
	assert.Equal(t, 1, stats.NewRowsPerFile[1])

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "id,A_name,B_val\n1,a,\n2,b,10\n3,,20\n", string(data))
}

func TestRun_MissingFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(a, []byte("id\n1\n"), 0o644))

	cfg, err := config.ParseFlags([]string{"-key", "id", "-out", filepath.Join(dir, "o.csv"), a, filepath.Join(dir, "nope.csv")})
	require.NoError(t, err)

	_, _, err = run(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
