package llm

import "testing"

type placesDoc struct {
	Places []struct {
		Name string `json:"name"`
	} `json:"places"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"places":[{"name":"Gwangjang Market"}]}`,
			want: "Gwangjang Market",
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"places\":[{\"name\":\"Gwangjang Market\"}]}\n```",
			want: "Gwangjang Market",
		},
		{
			name: "json embedded in prose",
			raw:  "Here are the places:\n{\"places\":[{\"name\":\"Gwangjang Market\"}]}\nHope that helps!",
			want: "Gwangjang Market",
		},
		{
			name:    "empty response",
			raw:     "   ",
			wantErr: true,
		},
		{
			name:    "no json at all",
			raw:     "I could not find any places.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc placesDoc
			err := DecodeJSON(tt.raw, &doc)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeJSON() = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeJSON() error = %v", err)
			}
			if len(doc.Places) != 1 || doc.Places[0].Name != tt.want {
				t.Fatalf("decoded = %+v, want name %q", doc, tt.want)
			}
		})
	}
}
