// Package engine turns a form schema and a record into ordered render
// instructions and merges edit intents back into records. Both operations
// are pure: the engine keeps no state between calls and never mutates the
// records it is given.
package engine
