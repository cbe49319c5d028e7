// Package codec implements the symbolic compression codec: input bytes are
// split into overlapping two-byte chunks, each chunk maps to a bounded-range
// symbol, repeated symbol sub-sequences are rewritten against a pattern
// dictionary, and an order-sensitive fingerprint is derived from the symbol
// stream. Encode, Decode and Fingerprint are pure and stateless; distinct
// calls may run concurrently without synchronization.
//
// Reconstruction is the chunk table's job alone. Symbol ids may collide and
// the fingerprint carries no reconstruction information; it exists for
// deduplication and integrity checking only.
package codec
