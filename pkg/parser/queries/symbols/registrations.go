// Package symbols holds tree-sitter queries locating custom element
// registration sites. They are a cheap pre-pass: the analyzer does the real
// resolution, the scanner only uses the matches to report candidate files.
package symbols

// registrationCommon matches constructs shared by both grammars.
const registrationCommon = `
; customElements.define("x-foo", Foo); window.customElements.define(...)
(call_expression
  function: (member_expression
    object: (_) @registration.object
    property: (property_identifier) @registration.method)
  arguments: (arguments)) @registration.call

; @customElement("x-foo") / @Component({ tag: "x-foo" })
(decorator
  (call_expression
    function: (identifier) @decorator.name)) @decorator.site

; /** @customElement x-foo */
(comment) @doc.comment
`

// JSQueries is the registration query for the JavaScript grammar.
const JSQueries = registrationCommon

// TSQueries adds ambient tag-name maps, which only exist in TypeScript.
const TSQueries = registrationCommon + `
; interface HTMLElementTagNameMap { "x-foo": Foo }
(interface_declaration
  name: (type_identifier) @tagmap.name) @tagmap.site
`
