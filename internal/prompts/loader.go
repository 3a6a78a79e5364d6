// Package prompts holds the model prompt templates. Templates live in JSON files
// embedded at compile time and use {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Key names one template: the embedded file and the entry within it.
type Key struct {
	File string
	Name string
}

func (k Key) String() string {
	return k.File + "#" + k.Name
}

// Templates used by the generation pipeline.
var (
	TopMatchPoints      = Key{File: "matching.json", Name: "top-match-points"}
	MatchQualifications = Key{File: "coverletter.json", Name: "match-qualifications"}
	DraftLetter         = Key{File: "coverletter.json", Name: "draft-letter"}
)

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// load parses every embedded file once.
var load = sync.OnceValues(func() (map[Key]string, error) {
	files, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}

	templates := make(map[Key]string)
	for _, file := range files {
		data, err := promptFiles.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
		}
		var entries map[string]string
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
		}
		for name, text := range entries {
			templates[Key{File: file, Name: name}] = text
		}
	}
	return templates, nil
})

// Get returns the raw template for key.
func Get(key Key) (string, error) {
	templates, err := load()
	if err != nil {
		return "", err
	}
	text, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt %s not found", key)
	}
	return text, nil
}

// Render fills every placeholder of the template for key. A placeholder without a
// value in data is an error; extra values are ignored.
func Render(key Key, data map[string]string) (string, error) {
	text, err := Get(key)
	if err != nil {
		return "", err
	}

	var missing []string
	for _, name := range Placeholders(text) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s: missing values for %s", key, strings.Join(missing, ", "))
	}
	return Format(text, data), nil
}

// MustRender is Render for the built-in templates, where a failure is a programming error.
func MustRender(key Key, data map[string]string) string {
	text, err := Render(key, data)
	if err != nil {
		panic(err)
	}
	return text
}

// Format replaces {{.Name}} placeholders with values from data in a single pass,
// so placeholder-like text inside a value is left alone.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for name, value := range data {
		pairs = append(pairs, "{{."+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Placeholders lists the distinct placeholder names in template, sorted.
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// keys lists every embedded template, ordered by file then name.
func keys() ([]Key, error) {
	templates, err := load()
	if err != nil {
		return nil, err
	}
	out := make([]Key, 0, len(templates))
	for k := range templates {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b Key) int {
		return strings.Compare(a.String(), b.String())
	})
	return out, nil
}
