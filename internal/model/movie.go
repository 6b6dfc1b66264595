package model

// MovieIndex lists the warning ids attached to a movie.
type MovieIndex struct {
	MovieID    int64
	WarningIDs []string
}

// Contains reports whether id is in the index.
func (m *MovieIndex) Contains(id string) bool {
	for _, w := range m.WarningIDs {
		if w == id {
			return true
		}
	}
	return false
}

// Add appends id unless it is already present. It reports whether the index changed.
func (m *MovieIndex) Add(id string) bool {
	if m.Contains(id) {
		return false
	}
	m.WarningIDs = append(m.WarningIDs, id)
	return true
}

// Remove drops id from the index. It reports whether the index changed.
func (m *MovieIndex) Remove(id string) bool {
	for i, w := range m.WarningIDs {
		if w == id {
			m.WarningIDs = append(m.WarningIDs[:i], m.WarningIDs[i+1:]...)
			return true
		}
	}
	return false
}
