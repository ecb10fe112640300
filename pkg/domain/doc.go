/*
Package domain contains the core domain models of the machi flow engine.

A flow is a static tree of nodes. Entries are the steps of the flow and forks
are decision points that gate a sub-tree behind a set of requirements. Both
kinds of node are evaluated against a caller-owned context through
conditions. This package is kept pure: it does no I/O and holds no state
between calls.

# Key Entities

  - Entry: a step, complete when every IsDone condition holds.
  - Fork: a decision point, entered when every requirement holds.
  - Condition: either a reference into a ConditionsMap or an inline predicate.
  - Step: a node as placed in the normalized tree, carrying its internal id.
  - Result: the resolved current entry plus the history that led to it.
  - State: an untyped, serialisable session snapshot used by stores.
*/
package domain
