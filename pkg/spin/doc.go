// Package spin provides compare-and-swap and spinlock primitives on a single
// shared word.
//
// The primitives are built on an exclusive load/store capability (LDREX and
// STREX on ARMv7-M). On targets with native atomics the Native monitor maps
// them directly onto sync/atomic.
//
// There is no fairness, no priority inheritance and no timeout. Critical
// sections guarded by a spinlock must be short.
//
// Copyright (c) 2026 Northvolt AB and the tokenhal authors.
package spin
