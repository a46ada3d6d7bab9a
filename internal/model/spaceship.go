package model

import "fmt"

// Spaceship is the managed entity. ID is assigned by the store on creation and
// never reused. Deleted marks logical removal: the row is retained but excluded
// from every read path.
type Spaceship struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Origin   string `json:"origin,omitempty"`
	Capacity int    `json:"capacity"`
	Deleted  bool   `json:"-"`
}

// SpaceshipPayload carries the mutable fields for create and update requests.
type SpaceshipPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Origin   string `json:"origin"`
	Capacity int    `json:"capacity"`
}

func (p SpaceshipPayload) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Category == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if p.Capacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", ErrValidation)
	}
	return nil
}

// PageSpec describes a listing request. Page numbers are 0-based; Sort is a
// "field,direction" pair validated by the store against its sortable columns.
type PageSpec struct {
	Page int
	Size int
	Sort string
}

// SpaceshipPage is one page of non-deleted spaceships plus paging totals.
type SpaceshipPage struct {
	Content       []Spaceship `json:"content"`
	PageNumber    int         `json:"pageNumber"`
	PageSize      int         `json:"pageSize"`
	TotalElements int64       `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
}

// SpaceshipsData wraps search results.
type SpaceshipsData struct {
	Spaceships []Spaceship `json:"spaceships"`
}
