// Package jsparse is a small, error-tolerant JavaScript parser.
//
// It exists to answer questions about partially typed input: what
// expression does the buffer end with, is an unparseable buffer merely
// unfinished, which parameters does a function's source text declare, and
// where are the top-level declarations of a script that awaits. Every node
// carries its byte span in the source so callers can slice the original
// text instead of re-printing the tree.
//
// Parsing never fails outright. ParseLoose always returns a Program and
// records problems as SyntaxErrors; ParseStrict and ParseExpression reject
// input with any problem.
//
// The grammar covers scripts: statements, declarations, classes, arrow and
// async functions, destructuring, optional chaining and templates. Module
// syntax (import and export declarations) is reported as an error. Regular
// expression bodies and template contents are kept as raw text.
package jsparse
