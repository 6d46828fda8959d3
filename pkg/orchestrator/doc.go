// Package orchestrator wires kcContext decoding, theme selection and
// renderer lookup behind a single Generate call.
package orchestrator
