// Package autotask provides the public API surface of the Autotask PSA
// REST client: client interfaces, configuration, the query and filter
// model, typed errors, and the request-optimization primitives
// (deduplication, batching, retries, response caching) shared by the
// entity clients.
//
// Most applications construct a client through pkg/atclient and never
// touch the primitives in this package directly. They are exported so
// the optimization layer can be tuned, observed, or reused standalone.
package autotask
