// Package layout defines the serialization format for generated layouts.
//
// A [Layout] is a flat, JSON-friendly record of a composed sequence and,
// optionally, its narrow-viewport brick groups. Modules are referenced by
// id so that a record stays small and can be resolved against the same
// catalog later:
//
//	seq, _ := engine.Generate(cat, score.ViewportWide, &seed)
//	rec := layout.Export(seq, engine.GroupForNarrowViewport(seq))
//	data, _ := layout.Marshal(rec)
//
//	rec, _ = layout.Read(bytes.NewReader(data))
//	seq, groups, err := layout.Parse(rec, cat)
//
// Marshal output is deterministic, so equal sequences produce identical
// bytes.
package layout
