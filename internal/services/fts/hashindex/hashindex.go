package hashindex

const (
	DefaultCapacity = 97
	maxLoadFactor   = 0.75
	hashSeed        = 7
	hashModulus     = 1<<31 - 1
)

type entry[V any] struct {
	key   string
	value V
	next  *entry[V]
}

// Table is a string-keyed map with separate chaining over a prime number of
// buckets. Keys match by exact equality.
type Table[V any] struct {
	buckets []*entry[V]
	size    int
	fold    func(string) string
}

type options struct {
	capacity int
	fold     func(string) string
}

type Option func(*options)

// WithCapacity sets the initial bucket count, rounded up to a prime.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithFallback enables tolerant lookups: when Get misses, every stored key is
// folded and compared with the folded query, first match wins.
func WithFallback(fold func(string) string) Option {
	return func(o *options) {
		o.fold = fold
	}
}

func New[V any](opts ...Option) *Table[V] {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity < 2 {
		o.capacity = DefaultCapacity
	}
	return &Table[V]{
		buckets: make([]*entry[V], nextPrime(o.capacity)),
		fold:    o.fold,
	}
}

func hash(key string) uint64 {
	h := uint64(hashSeed)
	for _, r := range key {
		h = (h*31 + uint64(r)) % hashModulus
	}
	return h
}

func (t *Table[V]) index(key string) int {
	return int(hash(key) % uint64(len(t.buckets)))
}

// Put inserts key or replaces the value stored under it.
func (t *Table[V]) Put(key string, value V) {
	idx := t.index(key)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			e.value = value
			return
		}
	}
	t.buckets[idx] = &entry[V]{key: key, value: value, next: t.buckets[idx]}
	t.size++

	if float64(t.size) > maxLoadFactor*float64(len(t.buckets)) {
		t.grow()
	}
}

// Exact looks key up without the tolerant fallback.
func (t *Table[V]) Exact(key string) (V, bool) {
	for e := t.buckets[t.index(key)]; e != nil; e = e.next {
		if e.key == key {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// Get looks key up exactly and, when the table was built WithFallback, falls
// back to a linear scan over folded keys.
func (t *Table[V]) Get(key string) (V, bool) {
	if v, ok := t.Exact(key); ok || t.fold == nil {
		return v, ok
	}

	folded := t.fold(key)
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			if t.fold(e.key) == folded {
				return e.value, true
			}
		}
	}
	var zero V
	return zero, false
}

func (t *Table[V]) ContainsKey(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Keys lists stored keys in bucket order.
func (t *Table[V]) Keys() []string {
	out := make([]string, 0, t.size)
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			out = append(out, e.key)
		}
	}
	return out
}

func (t *Table[V]) Values() []V {
	out := make([]V, 0, t.size)
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			out = append(out, e.value)
		}
	}
	return out
}

func (t *Table[V]) Len() int {
	return t.size
}

func (t *Table[V]) Capacity() int {
	return len(t.buckets)
}

func (t *Table[V]) grow() {
	old := t.buckets
	t.buckets = make([]*entry[V], nextPrime(2*len(old)))
	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			idx := t.index(e.key)
			e.next = t.buckets[idx]
			t.buckets[idx] = e
			e = next
		}
	}
}

func nextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for !isPrime(n) {
		n += 2
	}
	return n
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := 3; d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
