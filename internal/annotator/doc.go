// Package annotator finds configured identifiers in document text and
// wraps them in coloured marker spans.
//
// The pieces, leaves first:
//
//   - Compile builds one case-insensitive, whole-word matcher from a
//     Configuration.
//   - IsEligible decides whether a node may be annotated.
//   - TextAnnotator splices markers into a single text run.
//   - Scanner snapshots the eligible runs under a root and annotates them.
//   - Unannotate unwraps every marker back to plain text.
//
// None of these types are safe for concurrent use; they mutate the
// document they are given and expect to run on its owning goroutine.
package annotator
