// Package extractor runs the external text-extraction tool against a working
// copy.
//
// The Invoker deletes the previous output for a repository, including any
// "<name>_part_<N>.txt" chunk files, and then invokes
//
//	<interpreter> <tool> <repoPath> <outputFile> <ignoreFile> <staticExcludeFile> --skip-substring <token> --max-chunk-size <n>
//
// with the working copy as the working directory. The tool's exit status is
// recorded in the ExportOutcome.
package extractor
