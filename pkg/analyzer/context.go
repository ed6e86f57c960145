package analyzer

import (
	"fmt"
	"log/slog"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/jsdoc"
	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/tsnode"
)

// Site is a syntax node together with the file it belongs to.
type Site struct {
	File *program.SourceFile
	Node *ts.Node
}

// At returns a site for another node of the same file.
func (s Site) At(n *ts.Node) Site {
	return Site{File: s.File, Node: n}
}

// Text returns the source text of the node.
func (s Site) Text() string {
	return s.File.Text(s.Node)
}

// Source returns the file contents.
func (s Site) Source() []byte {
	return s.File.Source
}

// Key returns the node identity.
func (s Site) Key() tsnode.Key {
	return s.File.Key(s.Node)
}

// Field returns a site for a named field of the node.
func (s Site) Field(name string) Site {
	return s.At(tsnode.Field(s.Node, name))
}

// Valid reports whether the site points at a node.
func (s Site) Valid() bool {
	return s.File != nil && s.Node != nil
}

// Doc parses the documentation comment attached to the node. The result is
// never nil.
func (s Site) Doc() *jsdoc.Comment {
	return jsdoc.Parse(tsnode.DocComment(s.Node, s.File.Source))
}

// Context is handed to flavors during one AnalyzeFile call.
type Context struct {
	Program *program.Program
	Checker *program.Checker
	Config  *Config
	Logger  *slog.Logger

	cache   *Cache
	flavors []Flavor

	diagnostics []Diagnostic
	diagSeen    map[diagKey]bool

	// recorders collect what open declaration walks report, so cached
	// declarations can replay it.
	recorders []*diagRecorder
}

type diagRecorder struct {
	diags []Diagnostic
}

type diagKey struct {
	node tsnode.Key
	msg  string
}

func newContext(p *program.Program, cfg *Config, logger *slog.Logger, cache *Cache, flavors []Flavor) *Context {
	return &Context{
		Program:  p,
		Checker:  p.Checker(),
		Config:   cfg,
		Logger:   logger,
		cache:    cache,
		flavors:  flavors,
		diagSeen: make(map[diagKey]bool),
	}
}

// Report records a diagnostic. A declaration walked twice reports once.
func (c *Context) Report(s Site, severity Severity, format string, args ...any) {
	c.emit(Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: severity,
		Node:     s.Node,
		File:     s.File,
	})
}

func (c *Context) emit(d Diagnostic) {
	for _, r := range c.recorders {
		r.diags = append(r.diags, d)
	}
	key := diagKey{msg: d.Message}
	if d.Node != nil && d.File != nil {
		key.node = d.File.Key(d.Node)
	}
	if c.diagSeen[key] {
		return
	}
	c.diagSeen[key] = true
	c.diagnostics = append(c.diagnostics, d)
}

// record starts collecting reported diagnostics until stopRecording.
func (c *Context) record() *diagRecorder {
	r := &diagRecorder{}
	c.recorders = append(c.recorders, r)
	return r
}

func (c *Context) stopRecording(r *diagRecorder) {
	for i, cur := range c.recorders {
		if cur == r {
			c.recorders = append(c.recorders[:i], c.recorders[i+1:]...)
			return
		}
	}
}

// ResolveValue resolves a constant expression, see ResolveNodeValue.
func (c *Context) ResolveValue(s Site) (any, bool) {
	return ResolveNodeValue(c.Checker, s.File, s.Node)
}

// ResolveString resolves a constant expression to a string.
func (c *Context) ResolveString(s Site) (string, bool) {
	v, ok := c.ResolveValue(s)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// ResolveDeclarations resolves an identifier, member access or type name.
func (c *Context) ResolveDeclarations(s Site) []*program.Decl {
	if !s.Valid() {
		return nil
	}
	return c.Checker.ResolveIdentifier(s.File, s.Node)
}
