// SPDX-License-Identifier: MPL-2.0

// Package watch monitors a project root and reports changed files after a
// debounce window.
//
// Events arriving within the window are coalesced so OnChange fires once
// with the deduplicated, sorted set of root-relative paths. A callback that
// is still running when the next window closes is not re-entered; the
// pending set is kept and retried.
package watch
