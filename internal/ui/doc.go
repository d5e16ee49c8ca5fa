// Package ui holds small terminal widgets used outside the dashboard, such as
// the progress spinner the one-shot commands show while a request is running.
package ui
