package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"vsal/api/models"
	c "vsal/api/models/constants"
	"vsal/api/models/constants/dataset"

	"github.com/Jeffail/gabs"
	"github.com/go-co-op/gocron"
)

const genelistFileName = "genelist.json"

type (
	// PhenoService serves phenotype and gene-list documents out of
	// flat files under the configured root, cached in memory and
	// refreshed on a schedule. Documents are validated as JSON at
	// load time and served verbatim.
	PhenoService struct {
		phenoRoot string

		cacheMux sync.RWMutex
		phenos   map[c.DatasetId]string
		genelist string
	}
)

func NewPhenoService(cfg *models.Config) *PhenoService {
	ps := &PhenoService{
		phenoRoot: cfg.Pheno.Path,
		phenos:    map[c.DatasetId]string{},
	}

	ps.Refresh()

	// reload the cache daily so file updates land without a restart
	go func() {
		s := gocron.NewScheduler(time.UTC)
		s.Every(1).Days().At("04:00:00").Do(func() {
			fmt.Printf("[%s] - Running pheno/genelist cache refresh..\n", time.Now())
			ps.Refresh()
		})
		s.StartBlocking()
	}()

	return ps
}

// loadDocument reads and JSON-validates a single flat file; a missing
// file is not an error, it just yields no document.
func (ps *PhenoService) loadDocument(path string) (string, bool) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("[%s] - Error reading %s : %v..\n", time.Now(), path, err)
		}
		return "", false
	}
	if _, err := gabs.ParseJSON(contents); err != nil {
		fmt.Printf("[%s] - Skipping invalid JSON in %s : %v..\n", time.Now(), path, err)
		return "", false
	}
	return string(contents), true
}

// Refresh rescans the pheno root: one `<dataset>.pheno.json` per known
// dataset, plus the shared genelist file.
func (ps *PhenoService) Refresh() {
	if ps.phenoRoot == "" {
		return
	}

	phenos := map[c.DatasetId]string{}
	for _, d := range dataset.Vocabulary() {
		fileName := strings.ToLower(string(d)) + ".pheno.json"
		if doc, ok := ps.loadDocument(filepath.Join(ps.phenoRoot, fileName)); ok {
			phenos[d] = doc
		}
	}

	genelist, _ := ps.loadDocument(filepath.Join(ps.phenoRoot, genelistFileName))

	ps.cacheMux.Lock()
	ps.phenos = phenos
	ps.genelist = genelist
	ps.cacheMux.Unlock()
}

// Pheno returns the cached phenotype document for a dataset, or ""
// when none is on file.
func (ps *PhenoService) Pheno(dataset c.DatasetId) string {
	ps.cacheMux.RLock()
	defer ps.cacheMux.RUnlock()
	return ps.phenos[dataset]
}

// Genelist returns the cached shared gene-list document, or "".
func (ps *PhenoService) Genelist() string {
	ps.cacheMux.RLock()
	defer ps.cacheMux.RUnlock()
	return ps.genelist
}
