// Package htmlrewrite finds and rewrites link attributes in HTML documents.
//
// Rewrite works on the token stream so every byte outside a rewritten attribute
// value is written back unchanged. Links uses the parsed node tree.
package htmlrewrite
