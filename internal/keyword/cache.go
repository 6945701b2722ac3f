// Package keyword implements the keyword-watch feature: a read-only
// cache of watch registrations, a matcher that scans newly created
// content, and fire-and-forget alarm delivery.
package keyword

import (
	"gorm.io/gorm"

	"github.com/devhyun/boardwatch/internal/models"
)

// Cache maps a watched keyword to the authors who registered it. It is
// built once at startup and never written afterwards, so concurrent
// readers need no locking.
type Cache map[string][]string

// LoadCache reads all persisted watch rows and groups them by keyword.
func LoadCache(db *gorm.DB) (Cache, error) {
	var rows []models.Keyword
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}

	cache := make(Cache, len(rows))
	for _, r := range rows {
		cache[r.Keyword] = append(cache[r.Keyword], r.AuthorName)
	}
	return cache, nil
}
