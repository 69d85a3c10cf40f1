// Package query implements the request-side pipeline of the trends endpoint:
// normalizing raw transport parameters, validating them against the published
// contract, compiling the validated query into parameterized SQL fragments,
// and deriving pagination windows. Everything here is pure computation over
// explicit inputs; nothing reads globals or touches the network.
package query
