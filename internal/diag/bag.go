package diag

// Bag is the per-run, append-only collection of accepted diagnostics.
// A Bag belongs to a single project run and is not safe for concurrent use.
type Bag struct {
	items []Diagnostic
}

func NewBag(capHint int) *Bag {
	if capHint < 0 {
		capHint = 0
	}
	return &Bag{items: make([]Diagnostic, 0, capHint)}
}

// Add appends a diagnostic, keeping input order.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// HasErrors returns true if at least one diagnostic is an error.
func (b *Bag) HasErrors() bool {
	for i := range b.Items() {
		if b.items[i].Severity == SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Items returns the backing slice. Do not modify it.
func (b *Bag) Items() []Diagnostic {
	if b == nil {
		return nil
	}
	return b.items
}

// Merge appends all diagnostics from other.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// Counts returns the number of errors and warnings in the bag.
func (b *Bag) Counts() (errors, warnings int) {
	for i := range b.Items() {
		switch b.items[i].Severity {
		case SevError:
			errors++
		case SevWarning:
			warnings++
		}
	}
	return errors, warnings
}
