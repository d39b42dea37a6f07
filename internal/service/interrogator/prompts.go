package interrogator

import (
	"encoding/json"
	"fmt"
	"strings"

	"thecrew/internal/briefing"
	"thecrew/internal/domain/models"
)

const replyFormat = `Reply with a single JSON object and nothing else:
{"message": string, "currentLayer": number, "fieldKey": string, "chips": [string], "isComplete": boolean}
"message" is your next question, "fieldKey" the catalog key it fills and "chips" up to five short suggested answers.
Set "isComplete" to true only when every field has a usable answer.`

func summarizeSystemPrompt(catalog *briefing.Catalog) string {
	return fmt.Sprintf(`You are a creative producer briefing a short-form video team.
Read the client's materials, summarize them in a few sentences, then ask the first question of the briefing.

Briefing questionnaire:
%s
Reply with a single JSON object and nothing else:
{"summary": string, "message": string, "currentLayer": number, "fieldKey": string, "chips": [string]}`, catalog.Outline())
}

func chatSystemPrompt(catalog *briefing.Catalog, it *models.Interrogation) string {
	var b strings.Builder
	b.WriteString("You are a creative producer briefing a short-form video team. Ask one question at a time and skip questions the materials already answer.\n\n")
	b.WriteString("Briefing questionnaire:\n")
	b.WriteString(catalog.Outline())
	b.WriteString("\nSummary of the client's materials:\n")
	b.WriteString(it.Summary)
	b.WriteString("\n\nAnswers so far (JSON):\n")
	b.WriteString(answersJSON(it.Answers))
	if files := attachments(it.Materials); files != "" {
		b.WriteString("\n\nAttached files:\n")
		b.WriteString(files)
	}
	b.WriteString("\n\n")
	b.WriteString(replyFormat)
	return b.String()
}

const finalSystemPrompt = `You are a creative producer. Turn the draft below into a polished production brief in markdown.
Keep every section. Keep the "Tasks" section as a checklist where each line starts with "- [ ] ".
Reply with the markdown document only.`

// materialsPrompt renders the uploaded materials as the opening user message
func materialsPrompt(materials []models.Material) string {
	var b strings.Builder
	b.WriteString("Client materials:\n")
	for _, m := range materials {
		fmt.Fprintf(&b, "\n### %s\n", m.Name)
		if m.Text != "" {
			b.WriteString(m.Text)
			b.WriteString("\n")
		} else if m.FileID != nil {
			b.WriteString("(attached file)\n")
		}
	}
	return b.String()
}

func attachments(materials []models.Material) string {
	var lines []string
	for _, m := range materials {
		if m.FileID != nil {
			lines = append(lines, fmt.Sprintf("- %s (file %s)", m.Name, *m.FileID))
		}
	}
	return strings.Join(lines, "\n")
}

func answersJSON(answers map[string]string) string {
	if len(answers) == 0 {
		return "{}"
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// draftBrief renders the answers into the brief skeleton the model polishes.
// It is a complete document on its own.
func draftBrief(catalog *briefing.Catalog, it *models.Interrogation) string {
	var b strings.Builder
	b.WriteString("# Production brief\n\n")
	if s := strings.TrimSpace(it.Summary); s != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	for _, layer := range catalog.Layers() {
		fmt.Fprintf(&b, "## %s\n\n", layer.Title)
		for _, f := range layer.Fields {
			answer := strings.TrimSpace(it.Answers[f.Key])
			if answer == "" {
				answer = "_Not specified_"
			}
			fmt.Fprintf(&b, "- **%s** %s\n", f.Question, answer)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Tasks\n\n")
	for _, task := range draftTasks(it.Answers) {
		fmt.Fprintf(&b, "%s%s\n", checklistPrefix, task)
	}
	return b.String()
}

// draftTasks derives the default production checklist from the answers
func draftTasks(answers map[string]string) []string {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(answers[key]); v != "" {
			return v
		}
		return fallback
	}

	tasks := []string{
		"Write script around: " + get("key_message", "the key message"),
		"Plan the opening hook: " + get("hook", "first two seconds"),
		"Shoot " + get("format", "footage"),
		"Edit and add captions",
		"Prepare deliverables: " + get("deliverables", "final cut"),
		fmt.Sprintf("Publish on %s by %s", get("platform", "the target platform"), get("deadline", "the deadline")),
	}

	if c := strings.TrimSpace(answers["constraints"]); c != "" {
		tasks = append(tasks, "Check constraints: "+c)
	}
	return tasks
}
