// Package domain contains the core business entities and value objects of
// the service: the event record shape, the closed sort/filter vocabularies of
// the query contract, and the validated search query. It is independent of
// any specific infrastructure or delivery mechanism.
package domain
