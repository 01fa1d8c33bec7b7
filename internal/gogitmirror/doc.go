// Package gogitmirror keeps local working copies current without a git
// executable, using go-git for clone, checkout, and fast-forward pull.
package gogitmirror
