// Package repository defines the snapshot history store.
//
// Every collection run can be saved as a snapshot: the per-device outcome
// plus the ordered neighbor records of each successful device. The history
// answers "what did this device see last week" and feeds the HTTP API.
//
// The implementation lives in the sqlite subpackage. It migrates its schema
// on open and is tested against in-memory databases.
package repository
