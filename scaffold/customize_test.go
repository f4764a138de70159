package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffirmative(t *testing.T) {
	for answer, expected := range map[string]bool{
		"y":    true,
		"Y":    true,
		" y\n": true,
		"yes":  false,
		"n":    false,
		"":     false,
		"yy":   false,
	} {
		assert.Equal(t, expected, Affirmative(answer), "%q", answer)
	}
}

func TestQuestions(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	qs := Questions(cfg)
	require.Len(t, qs, 2)

	assert.Equal(t, "Do you want to use Typescript? (y/n) ", qs[0].Prompt)
	assert.Equal(t, "Would you like to use GraphQL? (y/n) ", qs[1].Prompt)

	for _, q := range qs {
		assert.Empty(t, q.Handle("n"))
		assert.Empty(t, q.Handle("sure"))
	}

	assert.Equal(t, []Mutation{
		MergeDependencies{Field: "dependencies", Entries: cfg.TypeScript.Dependencies},
		MergeDependencies{Field: "devDependencies", Entries: cfg.TypeScript.DevDependencies},
		ReplaceScripts{Scripts: cfg.TypeScript.Scripts},
		WriteFile{Path: "tsconfig.json", Contents: tsconfigJSON},
		WriteFile{Path: "webpack.config.js", Contents: webpackConfigJS},
		RemoveFile{Path: "src/index.js"},
		WriteFile{Path: "src/index.tsx", Contents: indexTSX},
	}, qs[0].Handle("y"))

	assert.Equal(t, []Mutation{
		MergeDependencies{Field: "dependencies", Entries: cfg.GraphQL.Dependencies},
		MergeDependencies{Field: "devDependencies", Entries: cfg.GraphQL.DevDependencies},
		WriteFile{Path: ".graphqlconfig", Contents: graphqlConfig},
	}, qs[1].Handle("Y"))
}

func TestCustomizeAppliesMutationsInOrder(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(`{"name": "demo", "scripts": {"test": "jest"}}`), 0600))

	qs := []Question{
		{
			Prompt: "first? ",
			Handle: func(answer string) []Mutation {
				return []Mutation{
					WriteFile{Path: "nested/dir/a.txt", Contents: []byte(answer)},
					RemoveFile{Path: "nested/dir/a.txt"},
					RemoveFile{Path: "never/existed.txt"},
					WriteFile{Path: "b.txt", Contents: []byte(answer)},
				}
			},
		},
		{
			Prompt: "second? ",
			Handle: func(answer string) []Mutation {
				return []Mutation{
					ReplaceScripts{Scripts: map[string]string{"start": answer}},
					ReplaceScripts{Scripts: nil},
				}
			},
		},
	}

	var out bytes.Buffer

	err := Customize(dir, NewLinePrompter(NewConsole(&out), strings.NewReader("one\ntwo")), qs)
	require.NoError(t, err)

	assert.Equal(t, "first? second? ", out.String())

	assert.NoFileExists(t, filepath.Join(dir, "nested/dir/a.txt"))

	b, err := os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(b))

	m := readJSON(t, filepath.Join(dir, ManifestFile))
	assert.Equal(t, map[string]string{"start": "two"}, readStringMap(t, m["scripts"]))
}

func TestCustomizeLeavesManifestAloneWithoutManifestChanges(t *testing.T) {
	dir := t.TempDir()

	qs := []Question{{
		Prompt: "q? ",
		Handle: func(string) []Mutation {
			return []Mutation{WriteFile{Path: "only.txt", Contents: []byte("x")}}
		},
	}}

	require.NoError(t, Customize(dir, FixedAnswer("y"), qs))

	assert.FileExists(t, filepath.Join(dir, "only.txt"))
	assert.NoFileExists(t, filepath.Join(dir, ManifestFile))
}

func TestCustomizeManifestErrors(t *testing.T) {
	dir := t.TempDir()

	qs := []Question{{
		Prompt: "q? ",
		Handle: func(string) []Mutation {
			return []Mutation{MergeDependencies{Field: "dependencies", Entries: map[string]string{"a": "1"}}}
		},
	}}

	err := Customize(dir, FixedAnswer("y"), qs)
	require.ErrorIs(t, err, ErrManifest)
}
