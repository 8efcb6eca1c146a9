// Package collation provides locale-aware string comparison at primary
// strength: base letters decide the order, case, accents and width do not.
package collation

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Compare returns a negative number when a sorts before b, zero when both are
// equal under the collation and a positive number otherwise.
type Compare func(a, b string) int

var ErrUnknownLocale = errors.New("unknown locale")

// New builds a primary-strength comparator for the BCP 47 locale.
// An empty locale selects the root collation.
func New(locale string) (Compare, error) {
	const op = "collation.New"

	tag := language.Und
	if locale != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownLocale, locale)
		}
		tag = parsed
	}

	// collate.Collator keeps scratch buffers and is not safe for concurrent use.
	var mu sync.Mutex
	c := collate.New(tag, collate.Loose)

	return func(a, b string) int {
		mu.Lock()
		defer mu.Unlock()
		return c.CompareString(a, b)
	}, nil
}

func MustNew(locale string) Compare {
	cmp, err := New(locale)
	if err != nil {
		panic(err)
	}
	return cmp
}

// Sort returns a sorted copy of keys. The merge is stable, so keys that
// collate equal keep their relative order.
func Sort(keys []string, cmp Compare) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	if len(out) < 2 {
		return out
	}
	aux := make([]string, len(out))
	mergeSort(out, aux, 0, len(out)-1, cmp)
	return out
}

func mergeSort(arr, aux []string, left, right int, cmp Compare) {
	if left >= right {
		return
	}
	mid := left + (right-left)/2
	mergeSort(arr, aux, left, mid, cmp)
	mergeSort(arr, aux, mid+1, right, cmp)

	copy(aux[left:right+1], arr[left:right+1])
	i, j, k := left, mid+1, left
	for i <= mid && j <= right {
		if cmp(aux[i], aux[j]) <= 0 {
			arr[k] = aux[i]
			i++
		} else {
			arr[k] = aux[j]
			j++
		}
		k++
	}
	for i <= mid {
		arr[k] = aux[i]
		i++
		k++
	}
	for j <= right {
		arr[k] = aux[j]
		j++
		k++
	}
}
