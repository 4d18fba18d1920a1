// Package selection implements the launcher's version query language and the
// matcher that narrows a library's versions down to the build(s) a query asks
// for.
//
// # Query Grammar
//
// A query has exactly three positional slots, one per numeric segment of a
// version (major, minor, patch). Each slot is either a concrete number or one
// of three wildcard markers:
//
//	^   take the highest value present
//	*   take any value
//	-   take the lowest value present
//
// Examples:
//
//	^.^.^    the newest build overall (DefaultQuery)
//	4.^.^    the newest 4.x build
//	3.-.*    the lowest 3.x minor line, any patch
//	4.2.0    exactly 4.2.0 (every prerelease of it ties)
//
// There are no comparison operators and no ranges.
//
// # Matching
//
// Matching is ordered and progressive. Wildcards are resolved against the
// versions that survived the previous slot, so "^" in the minor slot of
// "3.^.*" means "highest minor among the 3.x builds", not "highest minor in the
// library". Matching stops early as soon as one version remains.
//
// Given 3.3.18, 3.6.11, 4.1.0 and 4.2.0:
//
//	^.*.*  -> 4.1.0, 4.2.0   (major narrows to 4; minor and patch keep both)
//	3.-.*  -> 3.3.18         (major narrows to 3.x; lowest minor is 3; stops)
//
// A result with more than one version is a tie, not an error. Deciding among
// ties belongs to the caller.
package selection
