package catalog

import (
	"bytes"
	_ "embed"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Builtin returns the studio's default catalog. It panics if the embedded
// document is invalid.
func Builtin() *Catalog {
	c, err := Parse(bytes.NewReader(builtinYAML), YAML)
	if err != nil {
		panic("catalog: builtin catalog is invalid: " + err.Error())
	}
	return c
}
