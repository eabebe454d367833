package document

import "strconv"

// Matcher decides whether a field name marks translatable text.
type Matcher interface {
	Translatable(key string) bool
}

// Field is a translatable leaf reported by Walk.
type Field struct {
	// Container is the mapping or sequence holding the value.
	Container *Node
	Key       string
	Value     *Node
	// Path is the dotted path from the document root, e.g. "quests.0.name".
	Path string
}

// Walk visits n depth-first. Containers are recursed into with the path
// extended by their key; scalar leaves whose key m accepts are passed to fn.
// Sequence indices are used as keys. fn may mutate the container.
func Walk(n *Node, prefix string, m Matcher, fn func(Field)) {
	visit := func(key string, value *Node) {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if value.IsContainer() {
			Walk(value, path, m, fn)
			return
		}
		if m.Translatable(key) {
			fn(Field{Container: n, Key: key, Value: value, Path: path})
		}
	}

	switch n.Kind {
	case Mapping:
		for i := 0; i < len(n.Members); i++ {
			visit(n.Members[i].Key, n.Members[i].Value)
		}
	case Sequence:
		for i := 0; i < len(n.Items); i++ {
			visit(strconv.Itoa(i), n.Items[i])
		}
	}
}

// Paths returns the dotted path of every translatable leaf, in walk order.
func Paths(n *Node, m Matcher) []string {
	var paths []string
	Walk(n, "", m, func(f Field) {
		paths = append(paths, f.Path)
	})
	return paths
}
