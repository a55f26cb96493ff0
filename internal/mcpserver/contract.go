package mcpserver

// TagGuidelines describes how tags on quicknote notes are written. It is served
// to LLM consumers before they create or retag notes.
const TagGuidelines = `# quicknote Tag Guidelines

Notes are plain text. Each note carries an ordered list of tags.

## Rules

1. Tags are short: one word or a hyphenated phrase (` + "`" + `meeting-notes` + "`" + `).
2. Prefer lowercase. Tags are compared exactly, so ` + "`" + `Go` + "`" + ` and ` + "`" + `go` + "`" + ` are different tags.
3. Surrounding whitespace is trimmed; empty tags are dropped.
4. A tag appears at most once per note. Order is preserved, first occurrence wins.
5. Use at most five tags per note, most relevant first.
6. Call ` + "`" + `suggest_tags` + "`" + ` for proposals; they follow these rules already.

## Example

` + "```" + `json
{"content": "Standup: ship the sync client on Friday", "tags": ["meeting-notes", "sync-client"]}
` + "```" + `
`
