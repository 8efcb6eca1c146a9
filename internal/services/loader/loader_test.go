package loader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const withHeadings = `Efecto de X en Y

Autores
María Pérez
Juan Guerrero

Resumen
Este estudio analiza el efecto de X sobre Y.
Se observó aumento en X.

Palabras claves: X, Y; efecto
`

func TestParseArticle(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantTitle    string
		wantAuthors  []string
		wantBody     string
		wantKeywords []string
	}{
		{
			name:         "with headings",
			input:        withHeadings,
			wantTitle:    "Efecto de X en Y",
			wantAuthors:  []string{"María Pérez", "Juan Guerrero"},
			wantBody:     "Este estudio analiza el efecto de X sobre Y.\nSe observó aumento en X.",
			wantKeywords: []string{"X", "Y", "efecto"},
		},
		{
			name:         "one-line author list without heading",
			input:        "Análisis de datos\nAna Ruiz, Luis Gil; Eva Sol\nResumen\nTexto.\nPalabras clave: datos",
			wantTitle:    "Análisis de datos",
			wantAuthors:  []string{"Ana Ruiz", "Luis Gil", "Eva Sol"},
			wantBody:     "Texto.",
			wantKeywords: []string{"datos"},
		},
		{
			name:         "authors one per line without heading",
			input:        "Título\nAna Ruiz\nLuis Gil\n\nResumen\nCuerpo",
			wantTitle:    "Título",
			wantAuthors:  []string{"Ana Ruiz", "Luis Gil"},
			wantBody:     "Cuerpo",
			wantKeywords: []string{},
		},
		{
			name:         "keywords without colon",
			input:        "Título\nAutores\nAna\nResumen\nCuerpo\nPalabras claves realidad virtual, datos",
			wantTitle:    "Título",
			wantAuthors:  []string{"Ana"},
			wantBody:     "Cuerpo",
			wantKeywords: []string{"realidad virtual", "datos"},
		},
		{
			name:         "title only",
			input:        "\n\n  Solo título  \n",
			wantTitle:    "Solo título",
			wantAuthors:  []string{},
			wantBody:     "",
			wantKeywords: []string{},
		},
		{
			name:         "heading before title is skipped",
			input:        "Resumen\nTítulo real\nAutores\nAna",
			wantTitle:    "Título real",
			wantAuthors:  []string{"Ana"},
			wantBody:     "Título real\nAutores\nAna",
			wantKeywords: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseArticle(strings.NewReader(tt.input))
			require.NoError(t, err)

			assert.Equal(t, tt.wantTitle, a.Title)
			assert.Equal(t, tt.wantAuthors, a.Authors)
			assert.Equal(t, tt.wantBody, a.Body)
			assert.Equal(t, tt.wantKeywords, a.Keywords)
			assert.NotEmpty(t, a.ID)
		})
	}
}

func TestParseArticleMalformed(t *testing.T) {
	for _, input := range []string{"", "\n  \n", "Autores\nResumen\nPalabras: x"} {
		_, err := ParseArticle(strings.NewReader(input))
		assert.True(t, errors.Is(err, ErrMalformedArticle), "input %q", input)
	}
}

type recorder struct {
	mu                  sync.Mutex
	successes, failures int
}

func (r *recorder) RecordSuccess(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes++
}

func (r *recorder) RecordFailure(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func newLoader(rec *recorder) *Loader {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoader(log, 2, rec)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", withHeadings)
	writeFile(t, dir, "a.TXT", "Otro artículo\nAutores\nAna\n")
	writeFile(t, dir, "c.txt", "   \n")
	writeFile(t, dir, "notes.md", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	rec := &recorder{}
	results, err := newLoader(rec).LoadDirectory(context.Background(), dir)

	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a.TXT", filepath.Base(results[0].Path))
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "Otro artículo", results[0].Article.Title)

	assert.Equal(t, "Efecto de X en Y", results[1].Article.Title)

	assert.True(t, errors.Is(results[2].Err, ErrMalformedArticle))

	assert.Equal(t, 2, rec.successes)
	assert.Equal(t, 1, rec.failures)
}

func TestLoadDirectoryMissing(t *testing.T) {
	_, err := newLoader(&recorder{}).LoadDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseFileMissing(t *testing.T) {
	_, err := newLoader(&recorder{}).ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseArticleStripsUnprintables(t *testing.T) {
	a, err := ParseArticle(strings.NewReader("\ufeffTítulo\x07 real\nAutores\nAna\u200b Ruiz\n"))

	require.NoError(t, err)
	assert.Equal(t, "Título real", a.Title)
	assert.Equal(t, []string{"Ana Ruiz"}, a.Authors)
}
