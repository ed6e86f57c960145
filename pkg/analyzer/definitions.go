package analyzer

import (
	"regexp"
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/tsnode"
)

// pendingDefinition is a registration after duplicate results for the same
// declaration and tag were folded together.
type pendingDefinition struct {
	tag         string
	decl        Site
	handler     Flavor
	identNodes  []*ts.Node
	tagNodes    []*ts.Node
	file        *program.SourceFile
	fromLibrary bool
}

type definitionKey struct {
	decl tsnode.Key
	tag  string
}

// definitionCollector gathers registrations across the analyzed file and,
// depending on configuration, its libraries.
type definitionCollector struct {
	ctx     *Context
	order   []definitionKey
	pending map[definitionKey]*pendingDefinition
}

func newDefinitionCollector(ctx *Context) *definitionCollector {
	return &definitionCollector{ctx: ctx, pending: make(map[definitionKey]*pendingDefinition)}
}

// scan walks every node of f. The first flavor answering for a node wins and
// the walk descends unless it claimed the node without Continue.
func (dc *definitionCollector) scan(f *program.SourceFile, fromLibrary bool) {
	root := f.Root()
	if root == nil {
		return
	}
	tsnode.Walk(root, func(n *ts.Node) bool {
		d := discoverAt(dc.ctx, dc.ctx.flavors, Site{File: f, Node: n}, discoverDefinitions)
		if d == nil {
			return true
		}
		for _, r := range d.Items {
			dc.add(r, fromLibrary)
		}
		return d.Continue
	})
}

// add folds results naming the same declaration and tag: node lists are
// appended and a later handler replaces an earlier one.
func (dc *definitionCollector) add(r *DefinitionResult, fromLibrary bool) {
	if r == nil || r.TagName == "" {
		return
	}
	k := definitionKey{tag: r.TagName}
	if r.Declaration.Valid() {
		k.decl = r.Declaration.Key()
	}
	p, ok := dc.pending[k]
	if !ok {
		p = &pendingDefinition{tag: r.TagName, decl: r.Declaration, file: r.File, fromLibrary: fromLibrary}
		dc.pending[k] = p
		dc.order = append(dc.order, k)
	}
	if r.Handler != nil {
		p.handler = r.Handler
	}
	if r.IdentifierNode != nil {
		p.identNodes = append(p.identNodes, r.IdentifierNode)
	}
	if r.TagNameNode != nil {
		p.tagNodes = append(p.tagNodes, r.TagNameNode)
	}
}

// build walks each registered declaration and merges declarations sharing
// a tag name. The result is sorted by tag.
func (dc *definitionCollector) build() []*ComponentDefinition {
	byTag := make(map[string]*ComponentDefinition)
	var tags []string
	for _, k := range dc.order {
		p := dc.pending[k]
		decl := dc.ctx.walkDeclaration(p.decl, p.handler)

		def, ok := byTag[p.tag]
		if !ok {
			def = &ComponentDefinition{TagName: p.tag, File: p.file, FromLibrary: p.fromLibrary}
			byTag[p.tag] = def
			tags = append(tags, p.tag)
		}
		def.Declaration = mergeDeclarations(def.Declaration, decl)
		def.IdentifierNodes = append(def.IdentifierNodes, p.identNodes...)
		def.TagNameNodes = append(def.TagNameNodes, p.tagNodes...)
		def.FromLibrary = def.FromLibrary && p.fromLibrary
		if def.File == nil || def.File.IsLibrary && !p.file.IsLibrary {
			def.File = p.file
		}
	}

	sort.Strings(tags)
	out := make([]*ComponentDefinition, 0, len(tags))
	for _, t := range tags {
		out = append(out, byTag[t])
	}
	return out
}

var tagNamePattern = regexp.MustCompile(`^[a-z][a-z0-9._\x{b7}\x{c0}-\x{d6}\x{d8}-\x{f6}\x{f8}-\x{37d}\x{37f}-\x{1fff}\x{200c}-\x{200d}\x{203f}-\x{2040}\x{2070}-\x{218f}\x{2c00}-\x{2fef}\x{3001}-\x{d7ff}\x{f900}-\x{fdcf}\x{fdf0}-\x{fffd}\x{10000}-\x{effff}-]*-[a-z0-9._\x{b7}\x{c0}-\x{d6}\x{d8}-\x{f6}\x{f8}-\x{37d}\x{37f}-\x{1fff}\x{200c}-\x{200d}\x{203f}-\x{2040}\x{2070}-\x{218f}\x{2c00}-\x{2fef}\x{3001}-\x{d7ff}\x{f900}-\x{fdcf}\x{fdf0}-\x{fffd}\x{10000}-\x{effff}-]*$`)

// reservedTagNames may not be used for custom elements.
var reservedTagNames = map[string]bool{
	"annotation-xml": true, "color-profile": true, "font-face": true, "font-face-src": true,
	"font-face-uri": true, "font-face-format": true, "font-face-name": true, "missing-glyph": true,
}

// ValidTagName reports whether name is a valid custom element name: it
// starts with a lowercase ASCII letter, contains a hyphen, has no uppercase
// ASCII letters and is not reserved.
func ValidTagName(name string) bool {
	return tagNamePattern.MatchString(name) && !reservedTagNames[name]
}
