package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/worlddash/internal/config"
	"github.com/JonMunkholm/worlddash/internal/core"
)

var sourceFiles = map[string]string{
	"Countries.csv": "Country Code,Country,Continent\n" +
		"ESP,Spain,Europe\n" +
		"KEN,Kenya,Africa\n",
	"Paises.csv": "Codigo Pais,Pais,Continente\n" +
		"ESP,España,Europa\n",
	"Population.csv": "Country,Population\n" +
		"Spain,47000000\n" +
		"Kenya,53000000\n" +
		"Atlantis,1\n",
	"Infant_death_rate.csv": "Country,Infant mortality\n" +
		"Spain,2.5\n",
	"Life_expectancy.csv": "Country,Life Expectancy\n" +
		"Spain,83.2\n" +
		"Kenya,61.4\n",
}

func writeSources(t *testing.T, skip ...string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range sourceFiles {
		if contains(skip, name) {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func runCheck(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SOURCE_DIR", dir)
	t.Setenv("SOURCE_BACKEND", "file")
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"check", "--env-file", filepath.Join(dir, "absent.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	out, err := runCheck(t, writeSources(t))
	require.NoError(t, err)

	for _, pattern := range []string{
		`(?m)^countries\s+2$`,
		`(?m)^with population\s+2$`,
		`(?m)^with infant mortality\s+1$`,
		`(?m)^total population\s+100000000$`,
		`(?m)^unmatched population\s+1$`,
	} {
		assert.Regexp(t, regexp.MustCompile(pattern), out)
	}
}

func TestCheckCommandJSON(t *testing.T) {
	out, err := runCheck(t, writeSources(t), "--json")
	require.NoError(t, err)

	var s core.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 2, s.Countries)
	assert.Equal(t, int64(100_000_000), s.TotalPopulation)
	assert.NotEmpty(t, s.Version)
}

func TestCheckCommandMissingSource(t *testing.T) {
	_, err := runCheck(t, writeSources(t, "Population.csv"))
	require.Error(t, err)

	var srcErr *core.SourceLoadError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, core.SourcePopulation, srcErr.Source)
	assert.Equal(t, core.FailureMissing, srcErr.Failure)
	assert.Equal(t, "SRC001", core.MapError(err).Code)
}

func TestCheckCommandAmbiguousSource(t *testing.T) {
	dir := writeSources(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Countries.xlsx"), []byte("not a workbook"), 0o644))

	_, err := runCheck(t, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSourceLoad))
}

func TestOpenFilesLocations(t *testing.T) {
	dir := writeSources(t)

	tests := []struct {
		name   string
		cwd    string
		srcDir string
	}{
		{"absolute dir", "", dir},
		{"relative dir", filepath.Dir(dir), filepath.Base(dir)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cwd != "" {
				t.Chdir(tt.cwd)
			}
			cfg, err := config.LoadFrom(func(key string) string {
				return map[string]string{"SOURCE_DIR": tt.srcDir}[key]
			})
			require.NoError(t, err)

			b, err := openFiles(cfg)
			require.NoError(t, err)

			want := filepath.Join(tt.srcDir, "Countries.csv")
			assert.Equal(t, want, b.set.Countries.Location)
			_, err = os.Stat(b.set.Countries.Location)
			assert.NoError(t, err)
		})
	}
}
