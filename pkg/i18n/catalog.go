// Package i18n resolves dotted message keys against a bilingual catalog.
//
// A catalog is a tree whose inner nodes are Namespace values and whose leaves
// are Leaf{Ar, En} pairs. Lookups never fail loudly: an unknown key, or a key
// that stops at a Namespace, resolves to the key itself.
package i18n

import (
	"sort"
	"strings"
)

// Entry is either a Namespace or a Leaf.
type Entry interface {
	isEntry()
}

// Namespace maps one key segment to the next level of the tree.
type Namespace map[string]Entry

// Leaf is a localized message.
type Leaf struct {
	Ar string
	En string
}

func (Namespace) isEntry() {}
func (Leaf) isEntry()      {}

// Text is a bilingual pair as exposed to callers.
type Text struct {
	Ar string `json:"ar"`
	En string `json:"en"`
}

// Catalog is an immutable message tree.
type Catalog struct {
	root Namespace
}

// NewCatalog copies root so later changes to the literal cannot leak in.
func NewCatalog(root Namespace) *Catalog {
	return &Catalog{root: copyNamespace(root)}
}

func copyNamespace(ns Namespace) Namespace {
	out := make(Namespace, len(ns))
	for k, e := range ns {
		switch v := e.(type) {
		case Namespace:
			out[k] = copyNamespace(v)
		case Leaf:
			out[k] = v
		}
	}
	return out
}

// lookup descends one segment at a time and reports the leaf, if any.
func (c *Catalog) lookup(key string) (Leaf, bool) {
	if c == nil {
		return Leaf{}, false
	}
	var cur Entry = c.root
	for _, seg := range strings.Split(key, ".") {
		ns, ok := cur.(Namespace)
		if !ok {
			return Leaf{}, false
		}
		next, ok := ns[seg]
		if !ok {
			return Leaf{}, false
		}
		cur = next
	}
	leaf, ok := cur.(Leaf)
	return leaf, ok
}

// Has reports whether key names a leaf.
func (c *Catalog) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Keys returns every leaf key in sorted order.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	var out []string
	var walk func(prefix string, ns Namespace)
	walk = func(prefix string, ns Namespace) {
		for k, e := range ns {
			full := k
			if prefix != "" {
				full = prefix + "." + k
			}
			switch v := e.(type) {
			case Namespace:
				walk(full, v)
			case Leaf:
				out = append(out, full)
			}
		}
	}
	walk("", c.root)
	sort.Strings(out)
	return out
}

// Sections returns the top-level namespace names in sorted order.
func (c *Catalog) Sections() []string {
	if c == nil {
		return nil
	}
	var out []string
	for k, e := range c.root {
		if _, ok := e.(Namespace); ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
