package merger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langfile/internal/address"
	"langfile/internal/applier"
	"langfile/internal/document"
	"langfile/internal/filewalker"
	"langfile/internal/policy"
	"langfile/internal/storage"
	"langfile/internal/table"
)

const questBook = `{
  "questDatabase:9": [
    {
      "betterquesting:10.name:8": "Welcome",
      "betterquesting:10.desc:8": "Read this"
    },
    {
      "betterquesting:10.name:8": "Wood"
    }
  ]
}`

const (
	name0 = "questDatabase:9.0.betterquesting:10.name:8"
	desc0 = "questDatabase:9.0.betterquesting:10.desc:8"
	name1 = "questDatabase:9.1.betterquesting:10.name:8"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func writeTable(t *testing.T, path string, rows []table.Row) {
	t.Helper()
	require.NoError(t, table.Write(context.Background(), path, rows))
}

func newMerger() *Merger {
	return New(policy.Default(), storage.New(), nil)
}

func TestBuildKeyMap(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/quests.json": questBook,
		"b.json":        `{"betterquesting:10.name:8": 3}`,
		"c.txt":         "ignored",
	})

	km, err := newMerger().BuildKeyMap(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, KeyMap{
		address.Of(name0):                      name0,
		address.Of(desc0):                      desc0,
		address.Of(name1):                      name1,
		address.Of("betterquesting:10.name:8"): "betterquesting:10.name:8",
	}, km)

	assert.Equal(t, "https://0000000", km.Resolve("https://0000000"))
}

func TestBuildKeyMapInvalidReference(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"notes.txt": "x"})
	_, err := newMerger().BuildKeyMap(context.Background(), filepath.Join(root, "notes.txt"))
	assert.ErrorIs(t, err, filewalker.ErrInvalidInput)
}

func TestCombine(t *testing.T) {
	km := KeyMap{
		address.Of(name0): name0,
		address.Of(desc0): desc0,
	}
	fA := address.File("quests.json")
	fB := address.File("other.json")

	tests := []struct {
		description string
		primary     []table.Row
		additional  [][]table.Row
		expected    []table.Row
	}{
		{
			description: "name joined with pipe",
			primary:     []table.Row{{File: fA, Field: address.Of(name0), Text: "Hello"}},
			additional:  [][]table.Row{{{File: fA, Field: address.Of(name0), Text: "World"}}},
			expected:    []table.Row{{File: fA, Field: address.Of(name0), Text: "Hello | World"}},
		},
		{
			description: "desc joined with escaped blank lines",
			primary:     []table.Row{{File: fA, Field: address.Of(desc0), Text: "A"}},
			additional:  [][]table.Row{{{File: fA, Field: address.Of(desc0), Text: "B"}}},
			expected:    []table.Row{{File: fA, Field: address.Of(desc0), Text: `A\n\n\nB`}},
		},
		{
			description: "unresolved address falls back to space",
			primary:     []table.Row{{File: fA, Field: "https://fffffff", Text: "x"}},
			additional:  [][]table.Row{{{File: fA, Field: "https://fffffff", Text: "y"}}},
			expected:    []table.Row{{File: fA, Field: "https://fffffff", Text: "x y"}},
		},
		{
			description: "all matches across tables in order",
			primary:     []table.Row{{File: fA, Field: address.Of(name0), Text: "1"}},
			additional: [][]table.Row{
				{
					{File: fA, Field: address.Of(name0), Text: "2"},
					{File: fB, Field: address.Of(name0), Text: "other file"},
					{File: fA, Field: address.Of(name0), Text: "3"},
				},
				{
					{File: fA, Field: address.Of(name0), Text: "4"},
				},
			},
			expected: []table.Row{{File: fA, Field: address.Of(name0), Text: "1 | 2 | 3 | 4"}},
		},
		{
			description: "rows only in additional tables are dropped",
			primary:     []table.Row{{File: fA, Field: address.Of(name0), Text: "only"}},
			additional:  [][]table.Row{{{File: fB, Field: address.Of(desc0), Text: "lost"}}},
			expected:    []table.Row{{File: fA, Field: address.Of(name0), Text: "only"}},
		},
		{
			description: "legacy rows match legacy rows",
			primary:     []table.Row{{Field: address.Of(name0), Text: "a"}},
			additional:  [][]table.Row{{{Field: address.Of(name0), Text: "b"}, {File: fA, Field: address.Of(name0), Text: "c"}}},
			expected:    []table.Row{{Field: address.Of(name0), Text: "a | b"}},
		},
		{
			description: "no additional tables",
			primary:     []table.Row{{File: fA, Field: address.Of(name0), Text: "same"}},
			expected:    []table.Row{{File: fA, Field: address.Of(name0), Text: "same"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, newMerger().Combine(km, tc.primary, tc.additional...))
		})
	}
}

func TestCombineDoesNotMutateInput(t *testing.T) {
	primary := []table.Row{{File: "f", Field: "k", Text: "a"}}
	newMerger().Combine(KeyMap{}, primary, []table.Row{{File: "f", Field: "k", Text: "b"}})
	assert.Equal(t, "a", primary[0].Text)
}

func TestMergeFileThenApply(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	ref := filepath.Join(base, "ref")
	writeTree(t, ref, map[string]string{"quests.json": questBook})

	file := address.File("quests.json")
	writeTable(t, filepath.Join(base, "en.csv"), []table.Row{
		{File: file, Field: address.Of(name0), Text: "Welcome"},
		{File: file, Field: address.Of(desc0), Text: "Read this"},
		{File: file, Field: address.Of(name1), Text: "Wood"},
	})
	writeTable(t, filepath.Join(base, "ja.csv"), []table.Row{
		{File: file, Field: address.Of(name0), Text: "ようこそ"},
		{File: file, Field: address.Of(desc0), Text: "読んで"},
	})

	out := filepath.Join(base, "merged.csv")
	require.NoError(t, newMerger().MergeFile(ctx, out, ref, filepath.Join(base, "en.csv"), filepath.Join(base, "ja.csv")))

	rows, err := table.Read(out)
	require.NoError(t, err)
	assert.Equal(t, []table.Row{
		{File: file, Field: address.Of(name0), Text: "Welcome | ようこそ"},
		{File: file, Field: address.Of(desc0), Text: `Read this\n\n\n読んで`},
		{File: file, Field: address.Of(name1), Text: "Wood"},
	}, rows)

	translated := filepath.Join(base, "out")
	require.NoError(t, applier.New(policy.Default(), storage.New(), nil).Apply(ctx, ref, out, translated))

	data, err := os.ReadFile(filepath.Join(translated, "quests.json"))
	require.NoError(t, err)
	root, err := document.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Read this\n\n\n読んで", root.Get("questDatabase:9").Get("0").Get("betterquesting:10.desc:8").Text)
}

func TestMergeErrors(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"ref.json": questBook,
		"p.csv":    "a,b,c\n",
		"bad.csv":  "1,2,3,4\n",
	})

	_, err := newMerger().Merge(ctx, filepath.Join(base, "ref.json"), filepath.Join(base, "missing.csv"))
	assert.Error(t, err)

	_, err = newMerger().Merge(ctx, filepath.Join(base, "ref.json"), filepath.Join(base, "p.csv"), filepath.Join(base, "bad.csv"))
	assert.ErrorIs(t, err, table.ErrMalformedRow)

	_, err = newMerger().Merge(ctx, filepath.Join(base, "nowhere"), filepath.Join(base, "p.csv"))
	assert.Error(t, err)
}

func TestBuildKeyMapFollowsLinks(t *testing.T) {
	base := t.TempDir()
	shared := filepath.Join(base, "shared")
	writeTree(t, shared, map[string]string{"quests.json": questBook})

	root := filepath.Join(base, "root")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.Symlink(filepath.Join(shared, "quests.json"), filepath.Join(root, "linked.json")))

	km, err := newMerger().BuildKeyMap(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, KeyMap{
		address.Of(name0): name0,
		address.Of(desc0): desc0,
		address.Of(name1): name1,
	}, km)
}
