package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keySet map[string]bool

func (k keySet) Translatable(key string) bool { return k[key] }

func TestParseEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		description string
		input       string
	}{
		{
			description: "nested objects keep key order",
			input: `{
  "zeta": 1,
  "alpha": {
    "name": "Hello",
    "desc": "World"
  },
  "mid": [
    1,
    "two",
    true,
    null
  ]
}`,
		},
		{
			description: "wide integers survive",
			input: `{
  "id": 12345678901234567890123,
  "neg": -9007199254740993,
  "float": 1.50
}`,
		},
		{
			description: "empty containers",
			input: `{
  "a": {},
  "b": []
}`,
		},
		{
			description: "html characters are not escaped",
			input: `{
  "name": "<b>Tom & Jerry</b>"
}`,
		},
		{
			description: "top level array",
			input: `[
  {
    "name": "x"
  }
]`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			n, err := Parse([]byte(tc.input))
			require.NoError(t, err)
			out, err := Encode(n)
			require.NoError(t, err)
			assert.Equal(t, tc.input, string(out))
		})
	}
}

func TestParseDuplicateKeyKeepsFirstPosition(t *testing.T) {
	n, err := Parse([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)
	require.Len(t, n.Members, 2)
	assert.Equal(t, "a", n.Members[0].Key)
	assert.Equal(t, "3", n.Members[0].Value.Text)
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "{", `{"a": }`, `{"a": 1} {"b": 2}`, `[1, 2`} {
		_, err := Parse([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestWalk(t *testing.T) {
	n, err := Parse([]byte(`{
		"name": "root",
		"quests": [
			{"name": "first", "id": 1, "desc": "d1"},
			{"name": 7, "meta": {"desc": "deep"}}
		],
		"other": "ignored"
	}`))
	require.NoError(t, err)

	var paths []string
	var values []string
	Walk(n, "", keySet{"name": true, "desc": true}, func(f Field) {
		paths = append(paths, f.Path)
		values = append(values, f.Value.Text)
		assert.Same(t, f.Value, f.Container.Get(f.Key))
	})

	assert.Equal(t, []string{
		"name",
		"quests.0.name",
		"quests.0.desc",
		"quests.1.name",
		"quests.1.meta.desc",
	}, paths)
	assert.Equal(t, []string{"root", "first", "d1", "7", "deep"}, values)
}

func TestWalkPrefixAndIndexKeys(t *testing.T) {
	n, err := Parse([]byte(`["a", ["b"]]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"doc.0", "doc.1.0"}, func() []string {
		var out []string
		Walk(n, "doc", keySet{"0": true}, func(f Field) { out = append(out, f.Path) })
		return out
	}())
}

func TestWalkCallbackMutatesContainer(t *testing.T) {
	n, err := Parse([]byte(`{"list": [{"name": "a"}, {"name": "b"}]}`))
	require.NoError(t, err)
	Walk(n, "", keySet{"name": true}, func(f Field) {
		f.Container.Set(f.Key, NewString(f.Value.Text+"!"))
	})
	out, err := Encode(n)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"name": "a!"`)
	assert.Contains(t, string(out), `"name": "b!"`)
}

func TestPaths(t *testing.T) {
	n, err := Parse([]byte(`{"a": {"name": "x"}, "b": [{"name": "y"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.name", "b.0.name"}, Paths(n, keySet{"name": true}))
}
