package service

import "testing"

func TestCleanLLMJSONResponse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"sin fences", `{"a": 1}`, `{"a": 1}`},
		{"fence json", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fence sin etiqueta", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fence mayusculas", "```JSON\n{\"a\": 1}\n```", `{"a": 1}`},
		{"espacios alrededor", "   {\"a\": 1}   ", `{"a": 1}`},
		{"vacio", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanLLMJSONResponse(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"objeto pelado", `{"a": 1}`, `{"a": 1}`},
		{"texto alrededor", `Here you go: {"a": 1} hope it helps`, `{"a": 1}`},
		{"objetos anidados", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"llave dentro de string", `{"a": "close} brace"}`, `{"a": "close} brace"}`},
		{"escape dentro de string", `{"a": "quote \" and } brace"}`, `{"a": "quote \" and } brace"}`},
		{"dos objetos devuelve el primero", `{"a": 1} {"b": 2}`, `{"a": 1}`},
		{"sin objeto", "plain prose", ""},
		{"objeto sin cerrar", `{"a": 1`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractFirstJSONObject(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
