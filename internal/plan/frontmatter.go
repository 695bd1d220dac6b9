package plan

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatterDelimiter fences the YAML metadata block in .plan.md files.
const frontmatterDelimiter = "---"

// planDoc is the shape of a bare-YAML plan file (.yml). It is the plan
// metadata plus the markdown body under a "details" key.
type planDoc struct {
	Plan    `yaml:",inline"`
	Details string `yaml:"details,omitempty"`
}

// Parse parses plan file content. Files starting with a "---" fence are
// treated as markdown with YAML frontmatter; everything else is parsed as a
// bare YAML document. The path is only used for error context.
func Parse(path string, content []byte) (*Plan, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	var p Plan

	if bytes.HasPrefix(normalized, []byte(frontmatterDelimiter+"\n")) {
		meta, body, splitErr := splitFrontmatter(normalized)
		if splitErr != nil {
			return nil, fmt.Errorf("%s: %w", path, splitErr)
		}

		if err := yaml.Unmarshal(meta, &p); err != nil {
			return nil, fmt.Errorf("%s: parsing frontmatter: %w", path, err)
		}

		p.Details = strings.TrimSpace(string(body))
	} else {
		var doc planDoc

		if err := yaml.Unmarshal(normalized, &doc); err != nil {
			return nil, fmt.Errorf("%s: parsing plan: %w", path, err)
		}

		p = doc.Plan
		p.Details = strings.TrimSpace(doc.Details)
	}

	if err := validateParsed(&p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &p, nil
}

// validateParsed checks required fields after unmarshalling.
func validateParsed(p *Plan) error {
	if p.SchemaVersion == 0 {
		return ErrMissingSchemaVersion
	}

	if p.SchemaVersion != CurrentSchemaVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedSchema, p.SchemaVersion)
	}

	// Hand-authored files may omit status and priority; fill the defaults
	// before the range checks.
	if p.Status == "" {
		p.Status = StatusPending
	}

	if p.Priority == 0 {
		p.Priority = DefaultPriority
	}

	return p.Validate()
}

// splitFrontmatter separates the YAML metadata block from the markdown body.
func splitFrontmatter(content []byte) (meta, body []byte, err error) {
	rest := bytes.TrimPrefix(content, []byte(frontmatterDelimiter+"\n"))

	idx := bytes.Index(rest, []byte("\n"+frontmatterDelimiter+"\n"))
	if idx < 0 {
		// Allow a file that ends exactly at the closing fence.
		if bytes.HasSuffix(rest, []byte("\n"+frontmatterDelimiter)) {
			return rest[:len(rest)-len("\n"+frontmatterDelimiter)], nil, nil
		}

		return nil, nil, ErrUnclosedFrontmatter
	}

	return rest[:idx], rest[idx+len("\n"+frontmatterDelimiter+"\n"):], nil
}

// Format renders a plan as markdown with YAML frontmatter.
func Format(p *Plan) (string, error) {
	meta, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	var builder strings.Builder

	builder.WriteString(frontmatterDelimiter + "\n")
	builder.Write(meta)
	builder.WriteString(frontmatterDelimiter + "\n")

	if p.Details != "" {
		builder.WriteString("\n" + p.Details + "\n")
	}

	return builder.String(), nil
}
