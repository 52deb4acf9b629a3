// Package machosym lists the public Swift symbols of a Mach-O binary,
// feeding the demangling pipeline with candidate mangled names.
package machosym

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blacktop/go-macho"
)

var swiftSymbolPattern = regexp.MustCompile(`^_?\$[sS]`)

// List returns the public Swift mangled symbols of the Mach-O file at
// path. For fat binaries arch selects the slice by CPU name ("arm64",
// "x86_64"); an empty arch takes the first slice. Thin binaries ignore
// arch.
func List(path, arch string) ([]string, error) {
	ff, err := macho.OpenFat(path)
	if err == nil {
		defer ff.Close()
		for _, fa := range ff.Arches {
			if arch == "" || strings.EqualFold(fa.CPU.String(), arch) {
				return collect(fa.File)
			}
		}
		return nil, fmt.Errorf("architecture %q not present in %s", arch, path)
	}
	if err != macho.ErrNotFat {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	f, err := macho.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return collect(f)
}

func collect(f *macho.File) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name == "" || seen[name] || !swiftSymbolPattern.MatchString(name) {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	// The dyld export trie lists exactly the exported surface; the
	// symtab fallback covers binaries without dyld info.
	if exports, err := f.DyldExports(); err == nil {
		for _, entry := range exports {
			add(entry.Name)
		}
	}
	if len(out) == 0 && f.Symtab != nil {
		for _, sym := range f.Symtab.Syms {
			add(sym.Name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no public swift symbols found")
	}
	return out, nil
}

// Filter keeps the symbols whose demangled module matches one of the
// given module name prefixes. An empty filter keeps everything.
func Filter(symbols, modules []string) []string {
	if len(modules) == 0 {
		return symbols
	}
	var out []string
	for _, sym := range symbols {
		body := strings.TrimPrefix(strings.TrimPrefix(sym, "_"), "$")
		if len(body) > 0 && (body[0] == 's' || body[0] == 'S') {
			body = body[1:]
		}
		for _, module := range modules {
			if matchesModule(body, module) {
				out = append(out, sym)
				break
			}
		}
	}
	return out
}

// matchesModule reports whether the mangled body starts with the
// length-prefixed module name.
func matchesModule(body, module string) bool {
	prefix := fmt.Sprintf("%d%s", len(module), module)
	return strings.HasPrefix(body, prefix) || (module == "Swift" && strings.HasPrefix(body, "s"))
}
