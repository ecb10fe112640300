/*
Package session keeps flow sessions between resolutions.

A Manager loads the stored context of a session, merges the caller's patch
into it, resolves the flow and saves the result. Operations on one session
are serialised in process, and across replicas when a DistributedLocker is
configured.

Rewind moves a session back onto an entry it already completed; the next
Update then continues with the entry after it instead of jumping to the
first incomplete one.
*/
package session
