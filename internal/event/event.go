package event

import "spaceship-manager/internal/model"

type ChangeKind string

const (
	KindCreate ChangeKind = "CREATE"
	KindUpdate ChangeKind = "UPDATE"
	KindDelete ChangeKind = "DELETE"
)

// SpaceshipEvent announces one committed mutation. For DELETE only ChangeKind
// and RecordID are set; the remaining fields stay at their zero values.
type SpaceshipEvent struct {
	ChangeKind ChangeKind `json:"changeKind"`
	RecordID   int64      `json:"recordId"`
	Name       string     `json:"name"`
	Capacity   int        `json:"capacity"`
	Category   string     `json:"category"`
	Origin     string     `json:"origin"`
}

// FromSpaceship snapshots the mutable fields at mutation time.
func FromSpaceship(kind ChangeKind, s model.Spaceship) SpaceshipEvent {
	return SpaceshipEvent{
		ChangeKind: kind,
		RecordID:   s.ID,
		Name:       s.Name,
		Capacity:   s.Capacity,
		Category:   s.Category,
		Origin:     s.Origin,
	}
}

// Deleted builds the id-only DELETE event.
func Deleted(id int64) SpaceshipEvent {
	return SpaceshipEvent{ChangeKind: KindDelete, RecordID: id}
}
