// Package document holds the in-memory tree of a structured game-data file
// and the depth-first walk used to find translatable fields.
package document

import "strconv"

// Kind is the variant of a Node.
type Kind int

const (
	// Mapping is an object with ordered keys.
	Mapping Kind = iota
	// Sequence is an array.
	Sequence
	// Scalar is a string, number, boolean or null leaf.
	Scalar
)

// ScalarType distinguishes scalar leaves.
type ScalarType int

const (
	String ScalarType = iota
	Number
	Bool
	Null
)

// Member is one key/value pair of a Mapping.
type Member struct {
	Key   string
	Value *Node
}

// Node is a document value. Only the fields of its Kind are meaningful.
type Node struct {
	Kind    Kind
	Members []Member
	Items   []*Node
	Type    ScalarType
	// Text holds the string value, the literal number text, "true"/"false"
	// or "null". Number text is kept verbatim so wide integers survive.
	Text string
}

// NewMapping returns an empty mapping node.
func NewMapping() *Node { return &Node{Kind: Mapping} }

// NewSequence returns an empty sequence node.
func NewSequence() *Node { return &Node{Kind: Sequence} }

// NewString returns a string scalar.
func NewString(s string) *Node { return &Node{Kind: Scalar, Type: String, Text: s} }

// NewNumber returns a number scalar holding the literal text.
func NewNumber(text string) *Node { return &Node{Kind: Scalar, Type: Number, Text: text} }

// NewBool returns a boolean scalar.
func NewBool(b bool) *Node {
	return &Node{Kind: Scalar, Type: Bool, Text: strconv.FormatBool(b)}
}

// NewNull returns a null scalar.
func NewNull() *Node { return &Node{Kind: Scalar, Type: Null, Text: "null"} }

// IsContainer reports whether n is a Mapping or a Sequence.
func (n *Node) IsContainer() bool {
	return n.Kind == Mapping || n.Kind == Sequence
}

// IsString reports whether n is a string scalar.
func (n *Node) IsString() bool {
	return n.Kind == Scalar && n.Type == String
}

// Get returns the value stored under key, or nil. For sequences key is the
// decimal index.
func (n *Node) Get(key string) *Node {
	switch n.Kind {
	case Mapping:
		for _, m := range n.Members {
			if m.Key == key {
				return m.Value
			}
		}
	case Sequence:
		i, err := strconv.Atoi(key)
		if err == nil && i >= 0 && i < len(n.Items) {
			return n.Items[i]
		}
	}
	return nil
}

// Set replaces the value under key, appending a new member to a mapping when
// the key is absent. Setting an out-of-range sequence index is a no-op.
func (n *Node) Set(key string, value *Node) {
	switch n.Kind {
	case Mapping:
		for i := range n.Members {
			if n.Members[i].Key == key {
				n.Members[i].Value = value
				return
			}
		}
		n.Members = append(n.Members, Member{Key: key, Value: value})
	case Sequence:
		i, err := strconv.Atoi(key)
		if err == nil && i >= 0 && i < len(n.Items) {
			n.Items[i] = value
		}
	}
}

// Append adds an item to a sequence.
func (n *Node) Append(value *Node) {
	n.Items = append(n.Items, value)
}
