package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	config    string
	resources string
}

func newEnv(t *testing.T, driver string) env {
	t.Helper()
	return newEnvFor(t, driver, "prod")
}

func newEnvFor(t *testing.T, driver, appEnv string) env {
	t.Helper()
	dir := t.TempDir()
	resources := filepath.Join(dir, "recursos")
	require.NoError(t, os.Mkdir(resources, 0o755))

	cfg := fmt.Sprintf(`env: %s
storage_path: %s
resources_dir: %s
storage:
  driver: %s
analysis:
  stemming: false
workers: 2
`, appEnv, filepath.Join(dir, "storage", "articles.db"), resources, driver)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	return env{config: path, resources: resources}
}

func (e env) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.resources, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := e.runWithLog(t, args...)
	return out, err
}

// runWithLog also returns what the command logged to stderr.
func (e env) runWithLog(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, logs := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(logs)
	rootCmd.SetArgs(append([]string{"--config", e.config}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
		configPath, storagePath = "", ""
		titlesLocale, analyzeJSON = "", false
	}()

	err := rootCmd.Execute()
	return out.String(), logs.String(), err
}

const efectoFile = `Efecto de X en Y
Autores
María Pérez
Resumen
Este estudio analiza el efecto de X sobre Y. Se observó aumento en X.
Palabras claves: X, Y, efecto
`

const analisisFile = `Análisis de datos con Z
Autores
Juan Guerrero
María Pérez
Resumen
Se presentan métodos para analizar datos con Z. Z mostró rendimiento superior.
Palabras claves: Z, análisis, datos
`

func TestCommandsRegistered(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"add", "load", "titles", "keywords", "authors", "search", "analyze", "keyword", "clear", "stats"} {
		assert.Contains(t, names, want)
	}
}

func TestWorkflow(t *testing.T) {
	for _, driver := range []string{"leveldb", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			e := newEnv(t, driver)
			path := e.write(t, "efecto.txt", efectoFile)

			out, err := e.run(t, "add", path)
			require.NoError(t, err)
			assert.Equal(t, "Added: Efecto de X en Y\n", out)

			_, err = e.run(t, "add", path)
			assert.Error(t, err)

			e.write(t, "analisis.txt", analisisFile)
			out, err = e.run(t, "load")
			require.NoError(t, err)
			assert.Equal(t, "Added 1, skipped 1\n", out)

			out, err = e.run(t, "keywords")
			require.NoError(t, err)
			assert.Equal(t, "análisis\ndatos\nefecto\nX\nY\nZ\n", out)

			out, err = e.run(t, "authors")
			require.NoError(t, err)
			assert.Equal(t, "Juan Guerrero\nMaría Pérez\n", out)

			out, err = e.run(t, "titles")
			require.NoError(t, err)
			assert.Equal(t, "Análisis de datos con Z\nEfecto de X en Y\n", out)

			out, err = e.run(t, "search", "author", "maria", "perez")
			require.NoError(t, err)
			assert.Equal(t, "Efecto de X en Y\nAnálisis de datos con Z\n", out)

			out, err = e.run(t, "search", "keyword", "nada")
			require.NoError(t, err)
			assert.Equal(t, "No results found.\n", out)

			out, err = e.run(t, "analyze", "Efecto de X en Y")
			require.NoError(t, err)
			assert.Contains(t, out, "X: phrase=2, tokens/meta=3\n")
			assert.Contains(t, out, "datos: phrase=0, tokens/meta=0\n")

			out, err = e.run(t, "keyword", "z")
			require.NoError(t, err)
			assert.Contains(t, out, " - Análisis de datos con Z: phrase=2, tokens/meta=3\n")
			assert.Contains(t, out, "Total occurrences in the repository: 2\n")

			out, err = e.run(t, "stats")
			require.NoError(t, err)
			assert.Contains(t, out, "Articles: 2\n")
			assert.Contains(t, out, "Invariants: ok\n")

			out, err = e.run(t, "clear")
			require.NoError(t, err)
			assert.Equal(t, "Repository cleared.\n", out)

			out, err = e.run(t, "titles")
			require.NoError(t, err)
			assert.Equal(t, "No articles.\n", out)
		})
	}
}

func TestRunLogsMetrics(t *testing.T) {
	e := newEnvFor(t, "leveldb", "local")
	e.write(t, "efecto.txt", efectoFile)

	out, logs, err := e.runWithLog(t, "load")

	require.NoError(t, err)
	assert.Equal(t, "Added 1, skipped 0\n", out)
	assert.Contains(t, logs, "name=fts_articles_articles_indexed_total value=1")
	assert.Contains(t, logs, `name=fts_articles_load_jobs_total labels="status=success" value=1`)
}

func TestProdRunOmitsMetrics(t *testing.T) {
	e := newEnv(t, "leveldb")
	e.write(t, "efecto.txt", efectoFile)

	_, logs, err := e.runWithLog(t, "load")

	require.NoError(t, err)
	assert.NotContains(t, logs, "articles_indexed_total")
}

func TestAnalyzeUnknownTitle(t *testing.T) {
	e := newEnv(t, "leveldb")

	_, err := e.run(t, "analyze", "Nada")

	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	e := env{config: filepath.Join(t.TempDir(), "missing.yaml")}

	_, err := e.run(t, "keywords")

	assert.Error(t, err)
}
