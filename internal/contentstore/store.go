package contentstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marminbh/indexpush-svc/internal/host"
	"github.com/marminbh/indexpush-svc/internal/models"
)

// Store reads published items from the content_items table
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetItem loads an item by id. Ids that are not UUIDs cannot exist and are
// reported as not found.
func (s *Store) GetItem(ctx context.Context, id string) (models.ItemRef, error) {
	itemID, err := uuid.Parse(strings.Trim(strings.TrimSpace(id), "{}"))
	if err != nil {
		return models.ItemRef{}, fmt.Errorf("%w: invalid id %q", host.ErrItemNotFound, id)
	}

	var item models.ContentItem
	err = s.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ItemRef{}, fmt.Errorf("%w: %s", host.ErrItemNotFound, itemID)
	}
	if err != nil {
		return models.ItemRef{}, fmt.Errorf("failed to load item %s: %w", itemID, err)
	}

	return item.Ref(), nil
}

// GetDescendants returns every item below item, ordered by path so parents
// come before their children
func (s *Store) GetDescendants(ctx context.Context, item models.ItemRef) ([]models.ItemRef, error) {
	var rows []models.ContentItem
	err := s.db.WithContext(ctx).
		Where("lower(path) LIKE ? ESCAPE '\\'", descendantPattern(item.FullPath())).
		Order("path ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load descendants of %s: %w", item.ID, err)
	}

	refs := make([]models.ItemRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, row.Ref())
	}
	return refs, nil
}

// descendantPattern builds a LIKE pattern matching every path below path,
// with LIKE wildcards in the path escaped
func descendantPattern(path string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(strings.ToLower(strings.TrimRight(path, "/"))) + "/%"
}
