// rename.go - Naming convention for processed documents

package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ninjaforhire/mighty-gobbla/internal/processor"
)

// buildFilename derives the canonical YYMMDD-Store-Payment name for a
// processed document, keeping the original extension.
func buildFilename(record processor.ExpenseRecord, originalName string) string {
	ext := filepath.Ext(originalName)
	base := fmt.Sprintf("%s-%s-%s", record.Date, record.Store, record.Payment)
	base = strings.NewReplacer("/", "", ":", "").Replace(base)
	return base + ext
}

// resolveCollision returns a path under dir for name that does not collide
// with an existing file, appending _1, _2, ... when needed. currentPath is
// the file being renamed; landing on it is not a collision.
func resolveCollision(dir, name, currentPath string) string {
	path := filepath.Join(dir, name)
	if path == currentPath {
		return path
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	counter := 1
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) || path == currentPath {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
		counter++
	}
}
