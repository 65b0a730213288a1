// Package trace is a category-tagged diagnostic sink. Applications attach a
// writer or a callback per category to observe what the library is doing;
// nothing here is ever on the correctness path, and with no channel attached
// every call is a cheap no-op.
package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/alaingilbert/drbg/internal/mtx"
)

// Category tags a diagnostic message with the subsystem it came from.
type Category int

const (
	// Any receives messages of every category.
	Any Category = iota
	Init
	Rand
	Entropy
	numCategories
)

// Name string to category mapping, also used for the reverse lookup.
var categoryNames = []struct {
	name string
	cat  Category
}{
	{"any", Any},
	{"init", Init},
	{"rand", Rand},
	{"entropy", Entropy},
}

func (c Category) String() string {
	return CategoryName(c)
}

// CategoryName returns the name of a category, or "unknown".
func CategoryName(c Category) string {
	for _, e := range categoryNames {
		if e.cat == c {
			return e.name
		}
	}
	return "unknown"
}

// CategoryNum returns the category for a name produced by CategoryName.
// The comparison is case-insensitive.
func CategoryNum(name string) (Category, bool) {
	for _, e := range categoryNames {
		if strings.EqualFold(e.name, name) {
			return e.cat, true
		}
	}
	return 0, false
}

// Callback receives every message emitted on the categories it is attached
// to.
type Callback func(cat Category, msg string)

// channel is one attached destination with its optional framing.
type channel struct {
	cb     Callback
	prefix string
	suffix string
}

// channels maps each category to its attached destination. One destination
// per category; attaching replaces the previous one.
var channels mtx.RWMtx[map[Category]*channel]

// Attach routes messages of the given category to w. Attaching to Any makes
// w receive messages of every category that has no dedicated destination.
func Attach(cat Category, w io.Writer) error {
	return AttachCallback(cat, func(_ Category, msg string) {
		_, _ = io.WriteString(w, msg)
	})
}

// AttachCallback routes messages of the given category to cb.
func AttachCallback(cat Category, cb Callback) error {
	if cat < 0 || cat >= numCategories {
		return fmt.Errorf("unknown trace category %d", cat)
	}
	channels.With(func(m *map[Category]*channel) {
		if *m == nil {
			*m = make(map[Category]*channel)
		}
		(*m)[cat] = &channel{cb: cb}
	})
	return nil
}

// Detach removes the destination attached to the given category.
func Detach(cat Category) {
	channels.With(func(m *map[Category]*channel) {
		delete(*m, cat)
	})
}

// SetPrefix sets a line written before every message of the category.
func SetPrefix(cat Category, prefix string) {
	setFraming(cat, func(ch *channel) { ch.prefix = prefix })
}

// SetSuffix sets a line written after every message of the category.
func SetSuffix(cat Category, suffix string) {
	setFraming(cat, func(ch *channel) { ch.suffix = suffix })
}

func setFraming(cat Category, clb func(*channel)) {
	channels.With(func(m *map[Category]*channel) {
		if ch := (*m)[cat]; ch != nil {
			clb(ch)
		}
	})
}

// Enabled reports whether a destination would receive messages of the given
// category.
func Enabled(cat Category) (out bool) {
	channels.RWith(func(m map[Category]*channel) {
		_, direct := m[cat]
		_, any := m[Any]
		out = direct || any
	})
	return
}

// Msg emits a message on the given category.
func Msg(cat Category, msg string) {
	var ch channel
	var ok bool
	channels.RWith(func(m map[Category]*channel) {
		var p *channel
		if p, ok = m[cat]; !ok {
			p, ok = m[Any]
		}
		if ok {
			ch = *p
		}
	})
	if !ok {
		return
	}
	// The callback runs outside the registry lock so it may itself call
	// back into this package.
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if ch.prefix != "" {
		ch.cb(cat, ch.prefix+"\n")
	}
	ch.cb(cat, msg)
	if ch.suffix != "" {
		ch.cb(cat, ch.suffix+"\n")
	}
}

// Msgf emits a formatted message on the given category.
func Msgf(cat Category, format string, args ...any) {
	if !Enabled(cat) {
		return
	}
	Msg(cat, fmt.Sprintf(format, args...))
}
