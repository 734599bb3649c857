// ABOUTME: Prompt template for SQL generation
// ABOUTME: Asks the model for a bare SQL query grounded in the retrieved schema context
package llm

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are an SQL assistant. Generate an SQL query **exactly as a human would type it**.

### Context:
%s

### User Query:
%s

### Output:
(Output starts here—no code blocks, no formatting, just plain text)

SELECT ...
`

// BuildPrompt fills the SQL generation template
func BuildPrompt(query, context string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(context), strings.TrimSpace(query))
}

// StripMarkdownSQL removes a surrounding ``` or ```sql fence if the model added one
func StripMarkdownSQL(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```SQL")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
