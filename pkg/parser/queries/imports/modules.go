// Package imports holds the tree-sitter query for module specifiers. The
// same pattern text compiles against the TypeScript, TSX and JavaScript
// grammars.
package imports

// ModuleQueries captures every module specifier a file depends on.
//
// Captures:
//   - @module.source   - the specifier text of a static import or re-export
//   - @module.dynamic  - the specifier of import("x")
//   - @module.callee / @module.required - require("x"); callee is filtered in Go
const ModuleQueries = `
; import x from "./a"; import "./side-effect";
(import_statement
  source: (string (string_fragment) @module.source))

; export { a } from "./a"; export * from "./b";
(export_statement
  source: (string (string_fragment) @module.source))

; import("./lazy")
(call_expression
  function: (import)
  arguments: (arguments (string (string_fragment) @module.dynamic)))

; require("./cjs")
(call_expression
  function: (identifier) @module.callee
  arguments: (arguments . (string (string_fragment) @module.required)))
`
