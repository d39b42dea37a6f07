package interrogator

import (
	"encoding/json"
	"strings"

	"thecrew/internal/briefing"
)

// modelReply is the JSON object the model is asked to answer with
type modelReply struct {
	Summary      string   `json:"summary"`
	Message      string   `json:"message"`
	CurrentLayer int      `json:"currentLayer"`
	FieldKey     string   `json:"fieldKey"`
	Chips        []string `json:"chips"`
	IsComplete   bool     `json:"isComplete"`
}

// parseReply extracts the outermost JSON object from the model text.
// Models often wrap JSON in a code fence or add a sentence around it.
func parseReply(text string) (modelReply, bool) {
	var reply modelReply
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return reply, false
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &reply); err != nil {
		return modelReply{}, false
	}
	return reply, true
}

const completeMessage = "That covers everything. Generate the brief when you are ready."

// step is a validated next move of the questionnaire
type step struct {
	message  string
	layer    int
	fieldKey string
	chips    []string
	complete bool
}

// resolveStep checks the model's proposal against the catalog. Unknown or
// already answered fields fall back to the first unanswered question; the
// session completes when the model says so or nothing is left to ask.
func resolveStep(catalog *briefing.Catalog, reply modelReply, parsed bool, answers map[string]string) step {
	nextLayer, nextField, remaining := catalog.Next(answers)
	if !remaining || (parsed && reply.IsComplete) {
		msg := strings.TrimSpace(reply.Message)
		if !parsed || msg == "" {
			msg = completeMessage
		}
		return step{message: msg, layer: catalog.MaxLayer(), complete: true}
	}

	field, layer := nextField, nextLayer.Number
	accepted := false
	if parsed && reply.FieldKey != "" && strings.TrimSpace(answers[reply.FieldKey]) == "" {
		if f, ok := catalog.Field(reply.FieldKey); ok {
			field = f
			layer, _ = catalog.FieldLayer(f.Key)
			accepted = true
		}
	}

	// The model's wording and chips are only kept for the field it proposed
	msg, chips := field.Question, field.Chips
	if accepted {
		if m := strings.TrimSpace(reply.Message); m != "" {
			msg = m
		}
		if len(reply.Chips) > 0 {
			chips = reply.Chips
		}
	}

	return step{
		message:  msg,
		layer:    layer,
		fieldKey: field.Key,
		chips:    chips,
	}
}
