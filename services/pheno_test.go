package services

import (
	"os"
	"path/filepath"
	"testing"

	"vsal/api/models/constants/dataset"

	"github.com/stretchr/testify/assert"
)

func TestPhenoService(t *testing.T) {
	phenoRoot := t.TempDir()
	writeFile := func(name string, contents string) {
		assert.NoError(t, os.WriteFile(filepath.Join(phenoRoot, name), []byte(contents), 0644))
	}

	writeFile("demo.pheno.json", `{"fields":["age","sex"]}`)
	writeFile("mgrb.pheno.json", `not json at all`)
	writeFile("genelist.json", `{"genes":["BRCA1","BRCA2"]}`)

	ps := &PhenoService{phenoRoot: phenoRoot}
	ps.Refresh()

	t.Run("should serve a cached phenotype document verbatim", func(t *testing.T) {
		assert.Equal(t, `{"fields":["age","sex"]}`, ps.Pheno(dataset.DEMO))
	})

	t.Run("should skip files that are not valid JSON", func(t *testing.T) {
		assert.Equal(t, "", ps.Pheno(dataset.MGRB))
	})

	t.Run("should serve nothing for datasets without a file", func(t *testing.T) {
		assert.Equal(t, "", ps.Pheno(dataset.TRIO))
	})

	t.Run("should serve the shared gene list", func(t *testing.T) {
		assert.Equal(t, `{"genes":["BRCA1","BRCA2"]}`, ps.Genelist())
	})

	t.Run("should pick up file changes on refresh", func(t *testing.T) {
		writeFile("trio.pheno.json", `{"fields":[]}`)
		ps.Refresh()
		assert.Equal(t, `{"fields":[]}`, ps.Pheno(dataset.TRIO))
	})
}
