package program

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnana997/wcspec/pkg/parser"
)

// ResolveModule resolves a module specifier relative to from and returns the
// loaded target file, or nil when it cannot be resolved or read.
//
// Relative specifiers probe TypeScript and JavaScript extensions and index
// files; a ".js" specifier also matches a sibling ".ts" source. Bare
// specifiers walk up to node_modules and read package.json entry fields.
func (p *Program) ResolveModule(from *SourceFile, spec string) *SourceFile {
	if from == nil || spec == "" || from.IsDefaultLib {
		return nil
	}
	key := resolveKey{dir: filepath.Dir(from.Path), spec: spec}

	path, ok := p.resolved.Get(key)
	if !ok {
		path = p.resolvePath(key.dir, spec)
		p.resolved.Add(key, path)
	}
	if path == "" {
		return nil
	}

	f, err := p.load(path)
	if err != nil {
		p.logger.Debug("failed to load resolved module", "spec", spec, "path", path, "error", err)
		return nil
	}
	return f
}

func (p *Program) resolvePath(dir, spec string) string {
	if strings.HasPrefix(spec, ".") || filepath.IsAbs(spec) {
		base := spec
		if !filepath.IsAbs(spec) {
			base = filepath.Join(dir, spec)
		}
		return p.probe(base)
	}
	return p.resolvePackage(dir, spec)
}

// probe finds the file a path-like specifier points to.
func (p *Program) probe(base string) string {
	base = filepath.Clean(base)
	ext := strings.ToLower(filepath.Ext(base))

	if ext != "" && parser.IsSupportedFile(base) {
		if p.exists(base) {
			return base
		}
		// ESM TypeScript imports "./x.js" for "./x.ts".
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		var alts []string
		switch ext {
		case ".js", ".jsx":
			alts = []string{".ts", ".tsx", ".d.ts"}
		case ".mjs":
			alts = []string{".mts", ".d.mts"}
		case ".cjs":
			alts = []string{".cts", ".d.cts"}
		}
		for _, alt := range alts {
			if p.exists(stem + alt) {
				return stem + alt
			}
		}
	}

	for _, e := range parser.SourceExtensions {
		if p.exists(base + e) {
			return base + e
		}
	}

	if p.isDir(base) {
		if entry := p.packageEntry(base); entry != "" {
			return entry
		}
		for _, e := range parser.SourceExtensions {
			candidate := filepath.Join(base, "index"+e)
			if p.exists(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// resolvePackage resolves a bare specifier such as "lit" or
// "@scope/pkg/sub" through node_modules directories up the tree.
func (p *Program) resolvePackage(dir, spec string) string {
	name, sub := splitPackageSpec(spec)
	if name == "" {
		return ""
	}

	for d := dir; ; {
		for _, root := range []string{
			filepath.Join(d, "node_modules", name),
			filepath.Join(d, "node_modules", "@types", typesPackageName(name)),
		} {
			if !p.isDir(root) {
				continue
			}
			if sub != "" {
				if r := p.probe(filepath.Join(root, sub)); r != "" {
					return r
				}
				continue
			}
			if r := p.probe(root); r != "" {
				return r
			}
		}

		parent := filepath.Dir(d)
		if parent == d {
			return ""
		}
		d = parent
	}
}

func splitPackageSpec(spec string) (name, sub string) {
	parts := strings.Split(spec, "/")
	n := 1
	if strings.HasPrefix(spec, "@") {
		n = 2
	}
	if len(parts) < n {
		return "", ""
	}
	return strings.Join(parts[:n], "/"), strings.Join(parts[n:], "/")
}

// typesPackageName maps "@scope/pkg" to the DefinitelyTyped "scope__pkg".
func typesPackageName(name string) string {
	if strings.HasPrefix(name, "@") {
		return strings.Replace(strings.TrimPrefix(name, "@"), "/", "__", 1)
	}
	return name
}

type packageJSON struct {
	Types   string          `json:"types"`
	Typings string          `json:"typings"`
	Module  string          `json:"module"`
	Main    string          `json:"main"`
	Exports json.RawMessage `json:"exports"`
}

// packageEntry reads dir/package.json and probes its entry fields, types
// first.
func (p *Program) packageEntry(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		p.logger.Debug("invalid package.json", "dir", dir, "error", err)
		return ""
	}

	candidates := []string{pkg.Types, pkg.Typings}
	candidates = append(candidates, exportEntries(pkg.Exports)...)
	candidates = append(candidates, pkg.Module, pkg.Main)

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if r := p.probeFile(filepath.Join(dir, c)); r != "" {
			return r
		}
	}
	return ""
}

// probeFile is probe without directory handling, which would recurse into
// package.json again for "main": ".".
func (p *Program) probeFile(base string) string {
	if p.exists(base) && parser.IsSupportedFile(base) {
		return base
	}
	for _, e := range parser.SourceExtensions {
		if p.exists(base + e) {
			return base + e
		}
	}
	for _, e := range parser.SourceExtensions {
		candidate := filepath.Join(base, "index"+e)
		if p.exists(candidate) {
			return candidate
		}
	}
	return ""
}

// exportEntries extracts the root entry from an "exports" field: a string,
// or the "." condition object, preferring types.
func exportEntries(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return []string{s}
	}
	var m map[string]json.RawMessage
	if json.Unmarshal(raw, &m) != nil {
		return nil
	}
	if dot, ok := m["."]; ok {
		return exportEntries(dot)
	}
	var out []string
	for _, cond := range []string{"types", "import", "module", "default", "require"} {
		if v, ok := m[cond]; ok {
			out = append(out, exportEntries(v)...)
		}
	}
	return out
}

func (p *Program) exists(path string) bool {
	p.mu.RLock()
	_, ok := p.files[path]
	p.mu.RUnlock()
	if ok {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (p *Program) isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
