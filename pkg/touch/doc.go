// Package touch turns the raw touch sensor line into debounced user presence
// events.
//
// The state machine is polled from the main loop at a fixed period. A contact
// shorter than the minimum touch time is discarded as noise. A genuine
// contact is published as a short or long touch and cleared again once the
// gap period has elapsed.
//
// Copyright (c) 2026 Northvolt AB and the tokenhal authors.
package touch
