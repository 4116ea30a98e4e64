// Package adf flattens Atlassian Document Format trees to plain text.
package adf

import "strings"

// Flatten extracts the concatenated text content of a rich-document
// node. It accepts a plain string, a decoded document node
// (map[string]interface{} with "type"/"text"/"content"), or a slice of
// nodes, and descends recursively. Unknown shapes contribute nothing.
func Flatten(node interface{}) string {
	var sb strings.Builder
	flattenInto(&sb, node)
	return sb.String()
}

func flattenInto(sb *strings.Builder, node interface{}) {
	switch n := node.(type) {
	case string:
		sb.WriteString(n)
	case []interface{}:
		for _, child := range n {
			flattenInto(sb, child)
		}
	case map[string]interface{}:
		if n["type"] == "text" {
			if text, ok := n["text"].(string); ok {
				sb.WriteString(text)
			}
		}
		if content, ok := n["content"]; ok {
			flattenInto(sb, content)
		}
	}
}
