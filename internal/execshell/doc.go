// Package execshell runs git, gh, and the extraction interpreter as child
// processes. ShellExecutor adds logging, optional per-command timeouts and
// lifecycle observers on top of a CommandRunner; OSCommandRunner is the
// os/exec implementation.
package execshell
