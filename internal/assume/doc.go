// Package assume fills unknown quality components from user-declared fallback
// rules.
//
// A Config is either a single quality expression, applied to every item, or an
// ordered list of target requirement to fallback quality declarations. Prepare
// turns it into rules ranked most-specific-first; Apply then walks the ranked
// rules for one descriptor, merging every matching rule's known components into
// slots that are still unknown. Detected components are never overwritten, so
// Apply is idempotent and later, broader rules only fill what earlier, narrower
// rules left open.
//
// A Resolver is prepared exactly once. After Prepare the rule list is
// read-only and Apply may be called concurrently for different descriptors.
package assume
