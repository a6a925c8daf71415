// Package optr decodes the flash option register of the MCU.
//
// The option register is persistent: it is loaded from option bytes at reset
// and survives power cycles. Only the fields used by this HAL are decoded.
//
// Copyright (c) 2026 Northvolt AB and the tokenhal authors.
package optr
