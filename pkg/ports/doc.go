/*
Package ports defines the interfaces between the machi core and the
outside world.

# Key Interfaces

  - Resolver: resolves an untyped context to an Outcome. machi.Machine
    provides one.
  - StateStore: persists session State between resolutions.
  - DistributedLocker: serialises access to a session across replicas.
*/
package ports
