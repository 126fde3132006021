// Package discovery locates merge inputs inside a project tree: the object
// folder of each package directory and every custom-label fragment file.
package discovery
