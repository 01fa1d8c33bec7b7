// Package orgexport exports every repository of an organization to text.
//
// Service lists the organization, then for each listing line resolves the
// default branch, synchronizes a local working copy, and runs the extraction
// tool. Failures of a single repository are recorded in the RunSummary and
// never stop the run. CommandBuilder wires the Cobra command and selects the
// hosting and version control backends from configuration.
package orgexport
