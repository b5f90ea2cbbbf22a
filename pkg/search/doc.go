// Package search defines the search parameters, result records and the
// single owned search state shared by the controller and the view.
//
// # Parameters
//
// [Params] is the in-memory form of a search: which lookup kind is active
// ([SearchType]), the module and author text, and how that text is matched
// ([MatchMode]). [Params.Searchable] applies the short-input rule: empty text
// is never looked up, and one character is only looked up as an exact match.
//
// # State
//
// [State] holds the current parameters together with the results of the last
// completed lookup and the server-reported freshness of those results.
// Results are only ever written by a resolved lookup; user input changes
// [State.Params] and nothing else.
//
// # Rows
//
// [Columns] and [Row] turn records into display cells for each search type,
// including the permission-code mapping ([PermissionName]) and the link
// targets used by the CPAN meta web client.
package search
