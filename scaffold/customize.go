package scaffold

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type (
	// Question is one opt-in of the customization pass.
	// Handle maps the raw answer to the changes to make; it performs no I/O.
	Question struct {
		Prompt string
		Handle func(answer string) []Mutation
	}

	Mutation interface {
		apply(ws *workspace) error
	}

	MergeDependencies struct {
		Field   string
		Entries map[string]string
	}

	ReplaceScripts struct {
		Scripts map[string]string
	}

	WriteFile struct {
		Path     string
		Contents []byte
	}

	RemoveFile struct {
		Path string
	}

	workspace struct {
		dir      string
		manifest *Manifest
	}
)

var (
	//go:embed data/typescript/tsconfig.json
	tsconfigJSON []byte

	//go:embed data/typescript/webpack.config.js
	webpackConfigJS []byte

	//go:embed data/typescript/index.tsx
	indexTSX []byte

	//go:embed data/graphql/.graphqlconfig
	graphqlConfig []byte
)

// Affirmative reports whether answer is a yes. Only "y" and "Y" count.
func Affirmative(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

// Questions returns the opt-ins in the order they are asked.
func Questions(cfg *Config) []Question {
	return []Question{
		{
			Prompt: "Do you want to use Typescript? (y/n) ",
			Handle: func(answer string) []Mutation {
				if !Affirmative(answer) {
					return nil
				}

				return []Mutation{
					MergeDependencies{Field: "dependencies", Entries: cfg.TypeScript.Dependencies},
					MergeDependencies{Field: "devDependencies", Entries: cfg.TypeScript.DevDependencies},
					ReplaceScripts{Scripts: cfg.TypeScript.Scripts},
					WriteFile{Path: "tsconfig.json", Contents: tsconfigJSON},
					WriteFile{Path: "webpack.config.js", Contents: webpackConfigJS},
					RemoveFile{Path: "src/index.js"},
					WriteFile{Path: "src/index.tsx", Contents: indexTSX},
				}
			},
		},
		{
			Prompt: "Would you like to use GraphQL? (y/n) ",
			Handle: func(answer string) []Mutation {
				if !Affirmative(answer) {
					return nil
				}

				return []Mutation{
					MergeDependencies{Field: "dependencies", Entries: cfg.GraphQL.Dependencies},
					MergeDependencies{Field: "devDependencies", Entries: cfg.GraphQL.DevDependencies},
					WriteFile{Path: ".graphqlconfig", Contents: graphqlConfig},
				}
			},
		},
	}
}

func (ws *workspace) loadManifest() (*Manifest, error) {
	if ws.manifest != nil {
		return ws.manifest, nil
	}

	m, err := ReadManifest(ws.dir)
	if err != nil {
		return nil, err
	}

	ws.manifest = m

	return m, nil
}

func (md MergeDependencies) apply(ws *workspace) error {
	m, err := ws.loadManifest()
	if err != nil {
		return err
	}

	return m.Merge(md.Field, md.Entries)
}

func (rs ReplaceScripts) apply(ws *workspace) error {
	if len(rs.Scripts) == 0 {
		return nil
	}

	m, err := ws.loadManifest()
	if err != nil {
		return err
	}

	m.SetObject("scripts", rs.Scripts)

	return nil
}

func (wf WriteFile) apply(ws *workspace) error {
	dir := filepath.Dir(filepath.Join(ws.dir, filepath.FromSlash(wf.Path)))

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("%w: failed to create directory for %q: %w", ErrFileWrite, wf.Path, err)
	}

	return WriteToFile(ws.dir, filepath.FromSlash(wf.Path), func(fd io.Writer) error {
		_, err := fd.Write(wf.Contents)

		return err
	})
}

// A file that is already gone is not an error.
func (rf RemoveFile) apply(ws *workspace) error {
	err := os.Remove(filepath.Clean(filepath.Join(ws.dir, filepath.FromSlash(rf.Path))))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: failed to remove %q: %w", ErrFileWrite, rf.Path, err)
	}

	return nil
}

// Customize asks every question in turn and applies the changes each answer calls for.
// The manifest is read before and written after the changes of a single answer.
func Customize(dir string, prompter Prompter, questions []Question) error {
	for _, q := range questions {
		answer, err := prompter.Ask(q.Prompt)
		if err != nil {
			return fmt.Errorf("failed to read the answer to %q: %w", strings.TrimSpace(q.Prompt), err)
		}

		ws := workspace{dir: dir}

		for _, mut := range q.Handle(answer) {
			if err = mut.apply(&ws); err != nil {
				return err
			}
		}

		if ws.manifest != nil {
			if err = ws.manifest.Write(dir); err != nil {
				return err
			}
		}
	}

	return nil
}
