// Package table derives the visible rows of the GPU metrics table.
//
// A Table holds the latest dataset plus the user's sort, filter and page
// state. Every view (Page, Rows) is a pure derivation of that state, so the
// dashboard and the one-shot CLI commands render identical rows for the same
// inputs. Sorting compares raw values, never formatted strings.
package table
