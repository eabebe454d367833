package table

import "langfile/internal/address"

// Lookup maps file/field keys to translated text. Later rows overwrite
// earlier rows with the same key.
type Lookup struct {
	qualified map[string]string
	legacy    map[address.Address]string
}

// NewLookup indexes rows.
func NewLookup(rows []Row) *Lookup {
	l := &Lookup{
		qualified: make(map[string]string, len(rows)),
		legacy:    make(map[address.Address]string),
	}
	for _, row := range rows {
		if row.Legacy() {
			l.legacy[row.Field] = row.Text
			continue
		}
		l.qualified[row.Key()] = row.Text
	}
	return l
}

// Get returns the text for a field of a file. File-qualified rows take
// precedence over legacy rows that carry only the field address.
func (l *Lookup) Get(file, field address.Address) (string, bool) {
	if text, ok := l.qualified[Key(file, field)]; ok {
		return text, true
	}
	text, ok := l.legacy[field]
	return text, ok
}

// Len returns the number of distinct keys.
func (l *Lookup) Len() int {
	return len(l.qualified) + len(l.legacy)
}

// Index groups rows by key, keeping table order within each key.
type Index map[string][]Row

// NewIndex builds an Index over rows.
func NewIndex(rows []Row) Index {
	idx := make(Index)
	for _, row := range rows {
		idx[row.Key()] = append(idx[row.Key()], row)
	}
	return idx
}

// Texts returns the text of every row sharing the key of r, in table order.
func (idx Index) Texts(r Row) []string {
	matches := idx[r.Key()]
	if len(matches) == 0 {
		return nil
	}
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return texts
}
