// Package transformer defines the batch transformation contract. Every
// transformer returns a new batch and leaves its input untouched, so stages
// compose without sharing mutable state.
package transformer

import "flowback/pkg/records"

// Transformer maps one batch to another.
type Transformer interface {
	Apply(records.Batch) records.Batch
}

// Func adapts a plain function to Transformer.
type Func func(records.Batch) records.Batch

// Apply calls f.
func (f Func) Apply(in records.Batch) records.Batch { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs the chain in order, feeding each output to the next stage. Nil
// entries are skipped.
func (c Chain) Apply(in records.Batch) records.Batch {
	out := in
	for _, t := range c {
		if t == nil {
			continue
		}
		out = t.Apply(out)
	}
	return out
}
