// Package cli holds the terminal plumbing shared by the lobbyctl commands.
//
// It covers error classification and exit codes, interactive prompts
// (readline for visible input, x/term for passwords), progress spinners,
// table and structured output, and the text templates used for detail
// views of articles and gameworlds.
package cli
