// Package labels merges custom-label XML fragments into a single
// CustomLabels document, keeping the first definition of every label name.
package labels
