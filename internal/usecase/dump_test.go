package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperCrawler/internal/domain"
)

type upperRenderer struct{ err error }

func (r upperRenderer) Render(raw []byte) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "<pretty>" + string(raw) + "</pretty>", nil
}

func TestDumpOverwritesOutput(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "output.html")
	require.NoError(t, os.WriteFile(out, []byte("previous content that is longer"), 0o644))

	fetcher := &fakeFetcher{}
	d := NewDumper(fetcher, upperRenderer{}, nil)

	require.NoError(t, d.Dump(context.Background(), "http://journal.test/2024/12", out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<pretty>http://journal.test/2024/12</pretty>", string(got))
	assert.Equal(t, []string{"http://journal.test/2024/12"}, fetcher.calls)
}

func TestDumpErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	fetcher := &fakeFetcher{fail: map[string][]error{
		"http://down": {fmt.Errorf("%w: refused", domain.ErrNetwork)},
	}}
	d := NewDumper(fetcher, upperRenderer{}, nil)
	assert.ErrorIs(t, d.Dump(context.Background(), "http://down", filepath.Join(dir, "a.html")), domain.ErrNetwork)

	d = NewDumper(&fakeFetcher{}, upperRenderer{err: errors.New("bad html")}, nil)
	assert.ErrorIs(t, d.Dump(context.Background(), "http://up", filepath.Join(dir, "b.html")), domain.ErrParse)

	d = NewDumper(&fakeFetcher{}, upperRenderer{}, nil)
	assert.ErrorIs(t, d.Dump(context.Background(), "http://up", filepath.Join(dir, "missing", "c.html")), domain.ErrIO)
}
