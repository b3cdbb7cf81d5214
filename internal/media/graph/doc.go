// Package graph describes Media Engine work as a tree of audio operations.
//
// Nodes are immutable values. Leaves are source inputs or generated silence;
// every other node consumes one or more child streams. A Media Engine turns a
// root node into exactly one output artifact.
package graph
