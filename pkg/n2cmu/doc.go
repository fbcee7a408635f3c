// Package n2cmu provides the host side driver of the N2 coprocessor.
package n2cmu

// The N2 coprocessor runs a small fully connected network (input, hidden and
// output layers) and is controlled over a half-duplex serial link.
//
// Every request starts with a single opcode byte, optionally followed by a
// payload whose length is implied by the opcode and the network topology
// already configured on the device. There is no length prefix, delimiter or
// checksum: both ends derive payload sizes from the same counts, so the host
// always queries the counts from the device before transferring a vector.
//
// Multi-byte integers are little-endian, floats are IEEE-754 binary32 in
// little-endian byte order.
//
// Producer: N2 firmware
// Consumer: host (this package)
