// Package fm11 accesses the EEPROM of the FM11 NFC tag emulation chip.
//
// The chip is attached over SPI with a dedicated chip select line. Every
// access is bounded to a window of the EEPROM; the bytes below the window
// hold the UID and lock bytes and are never written.
//
// Copyright (c) 2026 Northvolt AB and the tokenhal authors.
package fm11
