// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"
)

// Func serializes payload to w.
type Func func(w io.Writer, payload any) error

// Artifacts maps a file name to the writer that produces it. Format packages
// register themselves in init blocks.
var Artifacts = map[string]Func{}

// Register adds or replaces the writer for name (last wins).
func Register(name string, fn Func) { Artifacts[name] = fn }

// Write dispatches to the writer registered for name.
func Write(name string, w io.Writer, payload any) error {
	fn, ok := Artifacts[name]
	if !ok {
		return fmt.Errorf("unknown artifact %q (no writer registered)", name)
	}
	return fn(w, payload)
}

// Names lists the registered artifacts in order.
func Names() []string {
	out := make([]string, 0, len(Artifacts))
	for n := range Artifacts {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
