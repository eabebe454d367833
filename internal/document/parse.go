package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Parse decodes a JSON document. Object key order is preserved and numbers
// are kept as literal text. A later duplicate key replaces the earlier value
// in place.
func Parse(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return nil, err
	}

	return root, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeMapping(dec)
		case '[':
			return decodeSequence(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q at offset %d", v, dec.InputOffset())
		}
	case string:
		return NewString(v), nil
	case json.Number:
		return NewNumber(v.String()), nil
	case bool:
		return NewBool(v), nil
	case nil:
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeMapping(dec *json.Decoder) (*Node, error) {
	n := NewMapping()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key at offset %d", dec.InputOffset())
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		n.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeSequence(dec *json.Decoder) (*Node, error) {
	n := NewSequence()
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		n.Append(value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}
