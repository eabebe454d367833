package document

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Indent is the indentation used by Encode.
const Indent = "  "

// Encode serialises n as indented JSON. Empty containers are written as {}
// and [], there is no trailing newline and HTML characters are not escaped.
func Encode(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeNode(&buf, n, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, n *Node, depth int) error {
	switch n.Kind {
	case Mapping:
		if len(n.Members) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, m := range n.Members {
			writeIndent(buf, depth+1)
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := encodeNode(buf, m.Value, depth+1); err != nil {
				return err
			}
			if i < len(n.Members)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte('}')
	case Sequence:
		if len(n.Items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range n.Items {
			writeIndent(buf, depth+1)
			if err := encodeNode(buf, item, depth+1); err != nil {
				return err
			}
			if i < len(n.Items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte(']')
	default:
		if n.Type == String {
			return encodeString(buf, n.Text)
		}
		buf.WriteString(n.Text)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

func writeIndent(buf *bytes.Buffer, depth int) {
	buf.WriteString(strings.Repeat(Indent, depth))
}
