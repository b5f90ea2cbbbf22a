// Package location encodes search parameters into addressable locations and
// decodes them back, across every grammar the web client has used.
//
// # Grammars
//
// Three versions exist. Only the newest is ever produced; the older two are
// decode-only:
//
//   - [V1]: "#=Moose" or "#~Moose" (exact/prefix, no author)
//   - [V2]: "#PERLANCAR~Module::Name", optionally "#PERLANCAR+~Foo" where the
//     "+" before the delimiter means "include other authors"; "*" selects
//     infix matching
//   - [V3]: "/packages?author=&module=Moose&match_mode=exact&other_authors=1"
//
// Each version is a pure [Matcher]; [Decode] tries [Matchers] in a fixed
// priority order and reports which version matched.
//
// # Codecs
//
// [QueryCodec] is the current codec used by the sync controller. It is total
// for every match mode. [FragmentCodec] encodes the fragment grammar, which
// has no infix form; infix falls back to prefix there.
//
// # Legacy redirects
//
// [RedirectTarget] converts a legacy fragment into the equivalent V3 location
// and [Redirector] performs that conversion once per page load as a full
// navigation, so no legacy fragment survives into the current page.
package location
