// Package statepath parses and indexes dotted, wildcarded state-property
// paths ("users.*.name") used by the binding core.
//
// PathInfo is the parsed, memoized form of a path pattern. PathNode is a
// prefix tree over path segments with exact-match lookup; each component
// type owns one tree rooted at the empty path.
package statepath
