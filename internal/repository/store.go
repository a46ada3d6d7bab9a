package repository

import (
	"context"
	"math"
	"strings"

	"spaceship-manager/internal/model"
)

// SpaceshipStore is the single source of truth for spaceship records. Every
// read filters soft-deleted rows; GetAny is the store-level inspection read
// that ignores the deletion flag.
type SpaceshipStore interface {
	Get(ctx context.Context, id int64) (model.Spaceship, error)
	GetAny(ctx context.Context, id int64) (model.Spaceship, error)
	List(ctx context.Context, spec model.PageSpec) (model.SpaceshipPage, error)
	SearchByName(ctx context.Context, term string) ([]model.Spaceship, error)
	Save(ctx context.Context, s model.Spaceship) (model.Spaceship, error)
	SoftDelete(ctx context.Context, id int64) error
}

var sortColumns = map[string]string{
	"id":       "id",
	"name":     "name",
	"category": "category",
	"origin":   "origin",
	"capacity": "capacity",
}

// parseSort validates a "field,direction" spec against the sortable columns.
// Anything unrecognized falls back to id ascending.
func parseSort(spec string) (column string, descending bool) {
	column = "id"

	field, dir, _ := strings.Cut(spec, ",")
	if col, ok := sortColumns[strings.ToLower(strings.TrimSpace(field))]; ok {
		column = col
	}

	return column, strings.EqualFold(strings.TrimSpace(dir), "desc")
}

const (
	maxPageNumber = math.MaxInt32
	maxPageSize   = 2000
)

// normalizePageSpec bounds the page spec so page*size always fits in an int.
func normalizePageSpec(spec model.PageSpec) model.PageSpec {
	if spec.Page < 0 {
		spec.Page = 0
	}
	if spec.Page > maxPageNumber {
		spec.Page = maxPageNumber
	}
	if spec.Size <= 0 {
		spec.Size = 20
	}
	if spec.Size > maxPageSize {
		spec.Size = maxPageSize
	}
	return spec
}

func totalPages(total int64, size int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
