package summary

import (
	"fmt"
	"strings"
)

const summaryTemplate = `Generate a one-sentence summary of this Claude Code hook event payload for an engineer monitoring the system.

Event Type: %s
Payload:
%s

Requirements:
- ONE sentence only (no period at the end)
- Focus on the key action or information in the payload
- Be specific and technical
- Keep under 15 words
- Use present tense
- No quotes or formatting
- Return ONLY the summary text

Examples:
- Reads configuration file from project root
- Executes npm install to update dependencies
- Searches web for React documentation
- Edits database schema to add user table
- Agent responds with implementation plan

Generate the summary based on the payload:`

// SummaryPrompt builds the instruction sent to the model for one event.
func SummaryPrompt(eventType, payload string) string {
	return fmt.Sprintf(summaryTemplate, eventType, payload)
}

const completionTemplate = `Generate a short, concise, friendly completion message for when an AI coding assistant finishes a task.

Requirements:
- Keep it under 10 words
- Make it positive and future focused
- Use natural, conversational language
- Focus on completion/readiness
- Do NOT include quotes, formatting, or explanations
- Return ONLY the completion message text
%s

%s

Generate ONE completion message:`

// CompletionPrompt builds the completion-message instruction. With a name,
// the model is asked to personalize roughly a third of its answers; that
// rate is left to the model.
func CompletionPrompt(engineerName string) string {
	name := strings.TrimSpace(engineerName)

	var instruction, examples string
	if name != "" {
		instruction = fmt.Sprintf("Sometimes (about 30%% of the time) include the engineer's name '%s' in a natural way.", name)
		examples = fmt.Sprintf(`Examples of the style:
- Standard: "Work complete!", "All done!", "Task finished!", "Ready for your next move!"
- Personalized: "%[1]s, all set!", "Ready for you, %[1]s!", "Complete, %[1]s!", "%[1]s, we're done!"`, name)
	} else {
		examples = `Examples of the style: "Work complete!", "All done!", "Task finished!", "Ready for your next move!"`
	}

	return fmt.Sprintf(completionTemplate, instruction, examples)
}
