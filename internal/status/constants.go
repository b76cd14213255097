// internal/status/constants.go
package status

// Status payload constants.
// These values define what every reader sees and MUST NOT be configurable.

// Message is the status text served to readers.
const Message = "Fault manager works ok\n"

// Sentinel terminates the served bytes and is counted in Length.
const Sentinel byte = 0

// Length is the advertised size of the resource: Message plus Sentinel.
const Length = len(Message) + 1

// ---- STAT BLOCK GEOMETRY ----

// StatBlockSize is the encoded size of a Snapshot.
const StatBlockSize = 4 + 3*8
