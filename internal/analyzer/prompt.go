package analyzer

import (
	"fmt"
	"os"
	"strings"
)

// ElementPlaceholder is replaced by the user's prompt (the circuit element to analyze).
const ElementPlaceholder = "[Your Element]"

const defaultInstruction = `
NOTE FOR THE BOT: You are an expert on circuit analysis, specialising in electronics and network engineering.  Your task is to calculate the current and voltage across the element given by the user.

**Element Identification**
   - Specify the name of the circuit element for which you want to calculate voltage (V) and current (I).

**Task:**

**Calculation and Output:**
   - Calculate and present the voltage (V) and current (I) values across the specified circuit element. Provide the results in a clear tabular format for easy comprehension:

      | Element         | Voltage (V)     | Current (I)     |
      |-----------------|-----------------|-----------------|
      | [Your Element]  | [Calculated V]  | [Calculated I]  |

**Calculation Section:**
   - Below the table, include a section explaining the calculation methodology. Provide relevant formulas and step-by-step instructions for clarity.

Ensure that the circuit diagram is comprehensive, including all necessary components and connections for accurate calculations.
`

// PromptTemplate is a static instruction with a placeholder for the element name
type PromptTemplate struct {
	Text        string
	Placeholder string
}

// DefaultTemplate returns the built-in circuit analysis instruction
func DefaultTemplate() PromptTemplate {
	return PromptTemplate{Text: defaultInstruction, Placeholder: ElementPlaceholder}
}

// LoadTemplateFile reads a template from disk. The file content is used as is.
func LoadTemplateFile(path string) (PromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptTemplate{}, fmt.Errorf("failed to read prompt template: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return PromptTemplate{}, fmt.Errorf("prompt template %s is empty", path)
	}
	return PromptTemplate{Text: string(data), Placeholder: ElementPlaceholder}, nil
}

// HasPlaceholder reports whether rendering will substitute anything.
func (t PromptTemplate) HasPlaceholder() bool {
	return t.Placeholder != "" && strings.Contains(t.Text, t.Placeholder)
}

// Render replaces every occurrence of the placeholder with element. The rest of the
// template is left byte for byte.
func (t PromptTemplate) Render(element string) string {
	if t.Placeholder == "" {
		return t.Text
	}
	return strings.ReplaceAll(t.Text, t.Placeholder, element)
}
