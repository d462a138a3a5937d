// Package dice provides a Go implementation of the TCAT protocol spoken by
// DICE-family FireWire audio interfaces (TCD2210/TCD2220 and friends from
// PreSonus, Focusrite, TC Electronic, Alesis, M-Audio and Lexicon).
//
// The package models the general protocol (clock negotiation, nickname,
// notifications), the protocol extension (capability, router, mixer, peak,
// command, stream format, current configuration and standalone sections),
// and a control-surface layer that exposes routing, mixing, metering and
// standalone configuration as named control elements.
//
// Register access goes through the Transport interface. The fw subpackage
// implements it on top of the Linux firewire character device ABI; tests use
// in-memory transports.
package dice
