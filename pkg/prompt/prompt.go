// Package prompt renders the LLM instructions for serializer generation.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ogulcanaydogan/autoapi/pkg/model"
)

// System is the system message sent with every generation request.
const System = "You are an assistant that writes clean, valid Python code for " +
	"Django REST Framework. " +
	"Always output ONLY Python code. No explanations, no markdown."

// Serializer returns the user prompt asking for a ModelSerializer of one model.
func Serializer(appLabel, modelName string, fields []model.FieldDescriptor) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("- %s: %s", f.Name, f.Type))
	}

	var b strings.Builder
	b.WriteString("\nYou are given a Django model definition.\n\n")
	fmt.Fprintf(&b, "App label: %s\n", appLabel)
	fmt.Fprintf(&b, "Model name: %s\n\n", modelName)
	b.WriteString("Fields:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nTask:\n")
	fmt.Fprintf(&b, "Write a Django REST Framework ModelSerializer named %sSerializer for this model.\n\n", modelName)
	b.WriteString("Rules:\n")
	b.WriteString("- Import from rest_framework import serializers.\n")
	b.WriteString("- Use serializers.ModelSerializer.\n")
	fmt.Fprintf(&b, "- Define Meta.model = %s.\n", modelName)
	b.WriteString("- Set Meta.fields = \"__all__\".\n")
	b.WriteString("- Do NOT include any explanation or comments.\n")
	b.WriteString("- Output ONLY valid Python code that can be appended to a serializers module.\n")
	return b.String()
}

// ForPair renders the serializer prompt for an (app, model) pair.
func ForPair(p model.Pair) string {
	return Serializer(p.App.Label, p.Model.Name, p.Model.Fields)
}
