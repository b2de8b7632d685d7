package records

// Source is a forward-only row reader with optional named columns.
//
// Next advances to the next row and reports false when the input is
// exhausted or failed; Err distinguishes the two. Row-read listeners run
// synchronously inside Next after the row is loaded and before Next
// returns. They may inspect the source but must not advance it.
type Source interface {
	Next() bool
	Err() error

	Field(i int) (string, bool)
	FieldCount() int
	Values() []string

	HasHeaders() bool
	Ordinal(name string) int
	Name(i int) (string, bool)

	RowIndex() int
	OnRowRead(fn RowReadFunc)

	Close() error
}

// RowReadFunc observes a row right after it is read.
type RowReadFunc func(src Source)

// rowListeners is embedded by sources to fan out row-read notifications.
type rowListeners struct {
	listeners []RowReadFunc
}

func (l *rowListeners) OnRowRead(fn RowReadFunc) {
	if fn != nil {
		l.listeners = append(l.listeners, fn)
	}
}

func (l *rowListeners) notify(src Source) {
	for _, fn := range l.listeners {
		fn(src)
	}
}

// headerIndex maps header text to column positions. The first occurrence
// of a repeated header wins.
type headerIndex struct {
	byName map[string]int
	names  map[int]string
}

func newHeaderIndex() *headerIndex {
	return &headerIndex{byName: make(map[string]int), names: make(map[int]string)}
}

func (h *headerIndex) add(name string, i int) {
	if _, exists := h.byName[name]; exists {
		return
	}
	h.byName[name] = i
	if _, named := h.names[i]; !named {
		h.names[i] = name
	}
}

func (h *headerIndex) ordinal(name string) int {
	if h == nil {
		return -1
	}
	if i, ok := h.byName[name]; ok {
		return i
	}
	return -1
}

func (h *headerIndex) name(i int) (string, bool) {
	if h == nil {
		return "", false
	}
	name, ok := h.names[i]
	return name, ok
}

func (h *headerIndex) len() int {
	if h == nil {
		return 0
	}
	return len(h.byName)
}

// fieldAt returns values[i] when i is in range.
func fieldAt(values []string, i int) (string, bool) {
	if i < 0 || i >= len(values) {
		return "", false
	}
	return values[i], true
}
