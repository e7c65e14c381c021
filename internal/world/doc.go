// Package world holds the sample simulation entities that are written to
// and read from saves: a Map with its Plots, Areas and Units.
//
// Every entity writes itself as one record and reads itself back with
// Fields, so fields added later only need a new tag.
package world
