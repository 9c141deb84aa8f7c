// ./internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

type pkg struct {
	ImportPath string
	Imports    []string
	Standard   bool
}

const mod = "contigr/"

// under reports whether path is pkg or one of its subpackages.
func under(path, pkg string) bool {
	return path == pkg || strings.HasPrefix(path, pkg+"/")
}

func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Dir = "../.."
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	shell := []string{
		"contigr/internal/app", "contigr/internal/appshell", "contigr/internal/cli",
		"contigr/internal/pipeline", "contigr/cmd",
	}
	bans := map[string][]string{
		"contigr/internal/graph": append([]string{
			"contigr/internal/pebble", "contigr/internal/errcorr", "contigr/internal/reads",
			"contigr/internal/graphio", "contigr/internal/output", "contigr/internal/writers",
			"contigr/internal/config", "contigr/internal/metrics",
		}, shell...),
		"contigr/internal/pebble":  append([]string{"contigr/internal/output", "contigr/internal/writers", "contigr/internal/config"}, shell...),
		"contigr/internal/errcorr": append([]string{"contigr/internal/pebble", "contigr/internal/output", "contigr/internal/config"}, shell...),
		"contigr/internal/reads":   append([]string{"contigr/internal/pebble", "contigr/internal/output"}, shell...),
		"contigr/internal/graphio": append([]string{"contigr/internal/pebble", "contigr/internal/output", "contigr/internal/writers"}, shell...),
		"contigr/internal/writers": append([]string{"contigr/internal/output", "contigr/internal/graph"}, shell...),
		"contigr/internal/output":  shell,
		"contigr/internal/config":  shell,
		"contigr/internal/metrics": shell,
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, mod) {
			continue
		}
		imp := p.ImportPath
		for owner, forbidden := range bans {
			if imp != owner {
				continue
			}
			for _, dep := range p.Imports {
				if !strings.HasPrefix(dep, mod) {
					continue
				}
				for _, ban := range forbidden {
					if under(dep, ban) {
						violations = append(violations, imp+" → "+dep)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
