package postings

const initialCapacity = 8

// List is an insertion-ordered set of article ids for one vocabulary term.
// Membership is a linear scan; per-term lists stay small.
type List struct {
	ids []string
}

func New() *List {
	return &List{
		ids: make([]string, 0, initialCapacity),
	}
}

// FromIDs rebuilds a list, dropping empty and repeated ids.
func FromIDs(ids []string) *List {
	l := New()
	for _, id := range ids {
		l.Add(id)
	}
	return l
}

// Add appends id unless it is empty or already present.
func (l *List) Add(id string) {
	if id == "" || l.Contains(id) {
		return
	}
	l.ids = append(l.ids, id)
}

func (l *List) Contains(id string) bool {
	if id == "" {
		return false
	}
	for _, existing := range l.ids {
		if existing == id {
			return true
		}
	}
	return false
}

func (l *List) Len() int {
	return len(l.ids)
}

// IDs returns a copy of the ids in insertion order.
func (l *List) IDs() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}
