// Package generator renders the file artifacts of a new instance: the
// docker-compose descriptor (from typed structs, via yaml.v3) and the seeded
// baseline configuration documents.
package generator
