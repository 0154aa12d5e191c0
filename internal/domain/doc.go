// Package domain contains the core entities of the DMO board: quadrants,
// daily task templates and their per-day instances, tags, completions and
// the journal, vision and bucketlist records that hang off a user. It is
// independent of storage and transport.
package domain
