// Package objects merges the object folders of every declared package
// directory into the consolidated default objects folder. Packages are
// applied in manifest order so that later packages override earlier ones.
package objects
