// Package prompt renders product snapshots into the persona review instruction.
package prompt

import (
	"fmt"
	"strings"

	"gearinhere/internal/domain"
)

// Placeholder is rendered in place of any field the page did not provide.
const Placeholder = "Not provided"

// Persona is one of the fixed voices a review is structured around.
type Persona struct {
	Name string
	Role string
}

// Personas lists the review voices in output order. Gear narrates.
var Personas = []Persona{
	{Name: "Gear", Role: "intro & overview"},
	{Name: "Spark", Role: "highlight innovation"},
	{Name: "Clarity", Role: "performance & comparison"},
	{Name: "Gaia", Role: "sustainability"},
	{Name: "Echo", Role: "user/community sentiment"},
}

const (
	header  = "You are Gear, the guide of Gearinhere. Here's a new product to review."
	closing = "End with a recommendation and call to action.\nOutput in markdown."
)

// Compose renders snapshot into the review instruction. Identical snapshots
// always produce identical output.
func Compose(snapshot *domain.ProductSnapshot) string {
	var b strings.Builder

	b.WriteString(header)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Product Title: %s\n", valueOr(snapshot.Title))
	fmt.Fprintf(&b, "Product Description: %s\n", valueOr(snapshot.Description))
	fmt.Fprintf(&b, "Product URL: %s\n", snapshot.URL)
	b.WriteString("\nGenerate a structured review with these personas:\n\n")
	for i, p := range Personas {
		fmt.Fprintf(&b, "%d. %s – %s\n", i+1, p.Name, p.Role)
	}
	b.WriteString("\n")
	b.WriteString(closing)
	b.WriteString("\n")

	return b.String()
}

func valueOr(s *string) string {
	if s == nil {
		return Placeholder
	}
	return *s
}
