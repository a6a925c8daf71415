// Package lfsdev is the on-die flash block device backing the token's
// wear-leveling filesystem.
//
// The driver implements the read/program/erase/sync contract of littlefs on
// a dual-bank flash with a persistent bank swap option. It performs no
// buffering; the filesystem cache is the only cache.
//
// Copyright (c) 2026 Northvolt AB and the tokenhal authors.
package lfsdev
