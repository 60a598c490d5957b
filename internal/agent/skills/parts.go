package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// partEntry is one row of the built-in consumables catalogue for the car.
type partEntry struct {
	Name        string
	OEM         string
	Aftermarket string
}

// catalogue lists the factory and aftermarket numbers for the common
// consumables of the Audi A3 8P 1.6 BSE.
var catalogue = []partEntry{
	{"engine oil", "G 052 167 M4", "Castrol EDGE 5W-40"},
	{"oil filter", "06A 115 561 B", "MANN W 719/30"},
	{"air filter", "1K0 129 620 D", "MANN C 30 139"},
	{"spark plugs", "101 000 033 AA", "NGK BKUR6ET-10"},
	{"cabin filter", "1K1 819 653 B", "MANN CUK 2939"},
	{"timing belt", "06A 198 119", "CONTITECH CT908K1"},
	{"water pump", "06B 121 011 H", "HEPU P547"},
}

func (e partEntry) render() string {
	return fmt.Sprintf("%s: OEM %s, aftermarket %s", e.Name, e.OEM, e.Aftermarket)
}

// PartInfo looks up one part in the catalogue by a fuzzy name match.
type PartInfo struct{}

// NewPartInfo creates the single-part lookup skill.
func NewPartInfo() *PartInfo { return &PartInfo{} }

func (p *PartInfo) Name() string { return "get_part_info" }
func (p *PartInfo) Description() string {
	return "Look up the factory and aftermarket part numbers for one consumable of this car"
}
func (p *PartInfo) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"part": {"type": "string", "description": "Part to look up, e.g. oil filter, spark plugs"}
		},
		"required": ["part"]
	}`)
}

func (p *PartInfo) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Part string `json:"part"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("parse args: %w", err)
	}
	if strings.TrimSpace(params.Part) == "" {
		return "", fmt.Errorf("part is required")
	}

	query := strings.ToLower(strings.TrimSpace(params.Part))
	for _, entry := range catalogue {
		if strings.Contains(entry.Name, query) || strings.Contains(query, entry.Name) {
			return entry.render(), nil
		}
	}

	names := make([]string, 0, len(catalogue))
	for _, entry := range catalogue {
		names = append(names, entry.Name)
	}
	return fmt.Sprintf("No part numbers on file for %q. Known parts: %s.", params.Part, strings.Join(names, ", ")), nil
}

// PartNumbers dumps the whole catalogue.
type PartNumbers struct{}

// NewPartNumbers creates the full-catalogue skill.
func NewPartNumbers() *PartNumbers { return &PartNumbers{} }

func (p *PartNumbers) Name() string { return "get_part_numbers" }
func (p *PartNumbers) Description() string {
	return "List factory and aftermarket part numbers for all common consumables of this car"
}
func (p *PartNumbers) Parameters() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (p *PartNumbers) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	lines := make([]string, 0, len(catalogue))
	for _, entry := range catalogue {
		lines = append(lines, entry.render())
	}
	return strings.Join(lines, "\n"), nil
}
