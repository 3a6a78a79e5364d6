// Package llm - extractor.go builds JSON extraction prompts from a declarative schema.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "ResumeRecord")
	Description string        // Preamble describing the extraction task
	Fields      []SchemaField // Expected output fields, in prompt order
	Rules       []string      // Extra instructions appended to the IMPORTANT block
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model, e.g. "string", ["string"]
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// FieldNames returns the top-level JSON field names in declaration order.
func (s ExtractionSchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
// The input text is embedded verbatim.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	if len(schema.Fields) > 0 {
		sb.WriteString("- Include every key, and no others: ")
		sb.WriteString(strings.Join(schema.FieldNames(), ", "))
		sb.WriteString(".\n")
	}
	for _, rule := range schema.Rules {
		sb.WriteString("- ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// ResumeRecordSchema returns the extraction schema for résumés. Field names are the
// wire contract with the model and must match types.ResumeRecord's JSON tags.
func ResumeRecordSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ResumeRecord",
		Description: `You are an expert résumé parser. Your task is to extract structured information from raw résumé text.
Output only JSON.`,
		Fields: []SchemaField{
			{Name: "fullName", Type: `"string" | null`, Description: "Candidate's full name"},
			{Name: "email", Type: `"string" | null`, Description: "Contact email address"},
			{Name: "phone", Type: `"string" | null`, Description: "Contact phone number"},
			{Name: "summary", Type: `"string" | null`, Description: "Professional summary or objective"},
			{Name: "skills", Type: `["string"]`, Description: "Individual skills, one per entry"},
			{Name: "education", Type: `["string"]`, Description: "Degrees and schools, one entry per degree"},
			{Name: "certifications", Type: `["string"]`, Description: "Certifications and licenses"},
			{
				Name:        "workExperience",
				Type:        `[{"jobTitle": "string" | null, "company": "string" | null, "startDate": "string" | null, "endDate": "string" | null, "responsibilities": ["string"]}]`,
				Description: "Positions held, most recent first",
			},
		},
		Rules: []string{
			"Use exactly the field names shown above.",
			"If a field is unknown or not present, use null as a placeholder.",
		},
	}
}
