package adf

import "testing"

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		node     interface{}
		expected string
	}{
		{
			name:     "plain string",
			node:     "just text",
			expected: "just text",
		},
		{
			name:     "nil",
			node:     nil,
			expected: "",
		},
		{
			name:     "text leaf",
			node:     map[string]interface{}{"type": "text", "text": "hello"},
			expected: "hello",
		},
		{
			name: "document with nested containers",
			node: map[string]interface{}{
				"type":    "doc",
				"version": 1,
				"content": []interface{}{
					map[string]interface{}{
						"type": "paragraph",
						"content": []interface{}{
							map[string]interface{}{"type": "text", "text": "credentialing "},
							map[string]interface{}{"type": "text", "text": "request"},
						},
					},
					map[string]interface{}{
						"type": "bulletList",
						"content": []interface{}{
							map[string]interface{}{
								"type": "listItem",
								"content": []interface{}{
									map[string]interface{}{
										"type": "paragraph",
										"content": []interface{}{
											map[string]interface{}{"type": "text", "text": " for provider data"},
										},
									},
								},
							},
						},
					},
				},
			},
			expected: "credentialing request for provider data",
		},
		{
			name: "non-text leaves contribute nothing",
			node: map[string]interface{}{
				"type": "doc",
				"content": []interface{}{
					map[string]interface{}{"type": "rule"},
					map[string]interface{}{"type": "text", "text": "after the rule"},
				},
			},
			expected: "after the rule",
		},
		{
			name:     "text node missing its text key",
			node:     map[string]interface{}{"type": "text"},
			expected: "",
		},
		{
			name:     "unknown shape",
			node:     42,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Flatten(tt.node); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
