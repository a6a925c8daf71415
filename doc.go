// Package tokenhal is the hardware layer of a USB/NFC security token.
//
// A Device owns the peripherals of one board: the on-die flash holding the
// filesystem, the touch sensor and its indicator, the NFC chip EEPROM and a
// single-shot timer. The firmware core drives it from one main loop through
// Periodic and reaches the vendor administrative commands through ServeAPDU.
//
// Copyright (c) 2026 Northvolt AB and the tokenhal authors.
//
// # Tracing
//
// Set Config.Debug to trace every flash and EEPROM access. Written and read
// data is dumped in `hexdump -C` format.
package tokenhal
