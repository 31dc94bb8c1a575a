package source

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Countries.xlsx", "")
	writeFile(t, dir, "~$Countries.xlsx", "")
	writeFile(t, dir, "Population.csv", "")
	writeFile(t, dir, "Population.xlsx", "")

	t.Run("single match", func(t *testing.T) {
		got, err := Resolve(dir, "Countries.{xlsx,csv}")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Countries.xlsx"), got)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := Resolve(dir, "Paises.{xlsx,csv}")
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := Resolve(dir, "Population.{xlsx,csv}")
		assert.ErrorIs(t, err, ErrAmbiguous)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := Resolve(dir, "Countries.[xlsx")
		assert.Error(t, err)
	})
}
