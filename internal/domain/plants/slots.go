package plants

import "sync"

// SlotTable mantiene las 4 posiciones de la galería de un usuario.
//
// Invariante: los slots ocupados forman un prefijo sin huecos (el slot k está
// ocupado solo si 0..k-1 lo están). Se produce asignando siempre al índice
// igual a la cantidad de ocupados, tanto al reconciliar como al completar una
// subida. La asignación es un read-modify-write, así que toda mutación pasa
// por el mutex de la tabla (un escritor a la vez).
type SlotTable struct {
	mu    sync.Mutex
	slots [SlotCount]Plant
	used  int
}

func NewSlotTable() *SlotTable { return &SlotTable{} }

// Occupied devuelve cuántos slots están ocupados.
func (t *SlotTable) Occupied() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used
}

// Full indica si ya no queda slot libre.
func (t *SlotTable) Full() bool { return t.Occupied() >= SlotCount }

// Assign coloca p en el siguiente slot libre y devuelve su índice.
func (t *SlotTable) Assign(p Plant) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.used >= SlotCount {
		return -1, ErrCapacityExceeded
	}
	idx := t.used
	t.slots[idx] = p
	t.used++
	return idx, nil
}

// Bound devuelve la Plant ligada al índice, si el slot está ocupado.
func (t *SlotTable) Bound(index int) (Plant, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= t.used {
		return Plant{}, false
	}
	return t.slots[index], true
}

// SetDescription aplica la edición optimista local sobre el slot.
// Devuelve false si el slot está vacío (la edición se descarta).
func (t *SlotTable) SetDescription(index int, description string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= t.used {
		return false
	}
	t.slots[index].Description = description
	return true
}

// Reset reconstruye la tabla desde registros remotos ya ordenados.
// Si llegan más de SlotCount, se quedan los primeros (truncado definido,
// no accidental: ver la política de reconciliación del Service).
func (t *SlotTable) Reset(ordered []Plant) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.used = 0
	for _, p := range ordered {
		if t.used >= SlotCount {
			break
		}
		t.slots[t.used] = p
		t.used++
	}
}

// Snapshot devuelve las 4 posiciones listas para render.
func (t *SlotTable) Snapshot() []Slot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Slot, SlotCount)
	for i := range out {
		out[i] = Slot{Index: i}
		if i < t.used {
			out[i].Occupied = true
			out[i].Plant = t.slots[i]
		}
	}
	return out
}
