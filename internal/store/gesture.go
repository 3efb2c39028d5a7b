package store

import "database/sql"

// Gesture is a label that actions can be bound to.
type Gesture struct {
	Label       string
	Description string
}

// GestureRepository reads the known gesture labels.
type GestureRepository struct {
	db *sql.DB
}

// Gestures returns the gesture repository for this store.
func (s *Store) Gestures() *GestureRepository {
	return &GestureRepository{db: s.db}
}

// List returns all known gestures ordered by label.
func (r *GestureRepository) List() ([]*Gesture, error) {
	rows, err := r.db.Query(`SELECT label, description FROM gestures ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gestures []*Gesture
	for rows.Next() {
		g := &Gesture{}
		if err := rows.Scan(&g.Label, &g.Description); err != nil {
			return nil, err
		}
		gestures = append(gestures, g)
	}
	return gestures, rows.Err()
}

// Exists reports whether label is a known gesture.
func (r *GestureRepository) Exists(label string) (bool, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM gestures WHERE label = ?`, label).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
