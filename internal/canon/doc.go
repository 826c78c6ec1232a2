// Package canon partitions identifiers into equivalence classes and elects one
// canonical identifier per class.
//
// Edges are unioned into an arena-backed disjoint-set forest (parent and size
// arrays indexed by dense node ids). Every root also tracks the best member of
// its component under the Priority order, so the canonical choice never
// depends on which node happens to become the root. Batches of edges may be
// built into partial forests concurrently; merging them into the global forest
// yields the same partition and the same elections as a sequential build.
package canon
