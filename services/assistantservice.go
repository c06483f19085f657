package services

import (
	"context"
	"fmt"
	"strings"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"
)

func autocompletionPrompt(messages []dto.ChatMessage, related map[string]any) string {
	var sb strings.Builder
	sb.WriteString("Help the user to the best of your ability.\n\n")
	sb.WriteString("Your task is to return an assistant_message that provides A BRIEF DESCRIPTION OF THE CHANGES, ")
	sb.WriteString("and an autocompletion, WHICH SHOULD BE THE RESPONSE TO THE USERS' MESSAGE.\n\n")
	sb.WriteString("Consider the following as context:\n\n")
	sb.WriteString(RenderContext(related))
	sb.WriteString("Now, here is the list of messages:\n")
	for i, m := range messages {
		if i > 0 {
			sb.WriteString(", ")
		}
		explanation := m.Explanation
		if explanation == "" {
			explanation = "None"
		}
		fmt.Fprintf(&sb, "%q: <content>%q</content>\n<explanation>%s</explanation>", m.Role, m.Content, explanation)
	}
	return sb.String()
}

// Autocomplete answers the in-editor assistant conversation.
func Autocomplete(ctx context.Context, ai *AIClient, messages []dto.ChatMessage, related map[string]any) (model.Autocompletion, error) {
	if len(messages) == 0 {
		return model.Autocompletion{}, apperr.BadRequest("At least one message is required")
	}
	return GenerateJSON[model.Autocompletion](ctx, ai, autocompletionPrompt(messages, related))
}

const (
	functionalRequirements    = 10
	nonFunctionalRequirements = 3
)

func requirementListPrompt(description string) string {
	return fmt.Sprintf("Generate only a list of %d functional requirements and %d non-functional requirements "+
		"for software development based on the following context: %s. "+
		"Provide only the list, without any comments, opinions, explanations, or introductions.",
		functionalRequirements, nonFunctionalRequirements, description)
}

// GenerateRequirementList backs the standalone requirement proxy.
func GenerateRequirementList(ctx context.Context, ai *AIClient, description string) (model.RequirementList, error) {
	if strings.TrimSpace(description) == "" {
		return model.RequirementList{}, apperr.BadRequest("Context is required in the request body")
	}
	return GenerateJSON[model.RequirementList](ctx, ai, requirementListPrompt(description))
}
