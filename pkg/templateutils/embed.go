package templateutils

import (
	"io/fs"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
)

// MustTemplate parses the named file from fsys with the local helpers and sprig's hermetic
// functions available. It panics on failure and is meant for package-level template vars.
func MustTemplate(fsys fs.FS, name string) *template.Template {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		panic(err)
	}
	t, err := template.New(name).
		Funcs(sprig.HermeticTxtFuncMap()).
		Funcs(Funcs).
		Parse(string(content))
	if err != nil {
		panic(err)
	}
	return t
}
