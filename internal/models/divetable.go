package models

// DiveTable owns every dive in canonical (import) order and tracks the
// current dive and the selection. It is confined to the service goroutine;
// callers must not mutate it concurrently.
type DiveTable struct {
	Dives   []*Dive
	current *Dive
	nextID  int
}

func NewDiveTable() *DiveTable {
	return &DiveTable{nextID: 1}
}

func (t *DiveTable) Size() int {
	return len(t.Dives)
}

// Append adds a dive to the table, assigning an id if it has none.
func (t *DiveTable) Append(d *Dive) {
	if d == nil {
		return
	}
	if d.ID == 0 {
		d.ID = t.nextID
	}
	if d.ID >= t.nextID {
		t.nextID = d.ID + 1
	}
	t.Dives = append(t.Dives, d)
}

// Remove unlinks a dive from the table. The caller is responsible for
// adjusting filter counters via DiveFilter.DiveRemoved beforehand.
func (t *DiveTable) Remove(d *Dive) {
	for i, e := range t.Dives {
		if e == d {
			t.Dives = append(t.Dives[:i], t.Dives[i+1:]...)
			break
		}
	}
	if t.current == d {
		t.current = t.firstSelected()
	}
}

// ForEachDive visits every dive in canonical order.
func (t *DiveTable) ForEachDive(fn func(d *Dive)) {
	for _, d := range t.Dives {
		fn(d)
	}
}

func (t *DiveTable) ByID(id int) *Dive {
	for _, d := range t.Dives {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (t *DiveTable) CurrentDive() *Dive {
	return t.current
}

func (t *DiveTable) SetCurrentDive(d *Dive) {
	t.current = d
}

// Deselect clears the selection flag of a dive. If it was the current dive,
// the current pointer moves to the first remaining selected dive.
func (t *DiveTable) Deselect(d *Dive) {
	if d == nil || !d.Selected {
		return
	}
	d.Selected = false
	if t.current == d {
		t.current = t.firstSelected()
	}
}

func (t *DiveTable) firstSelected() *Dive {
	for _, d := range t.Dives {
		if d.Selected {
			return d
		}
	}
	return nil
}
