// Package ui renders external command activity for people watching a run in a terminal.
package ui
