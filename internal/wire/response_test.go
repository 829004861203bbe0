package wire

import "testing"

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name string
		line string
		tag  string
		body ResponseBody
	}{
		{
			name: "success with message",
			line: "A000 Success Dessera",
			tag:  "A000",
			body: Success{Message: "Dessera"},
		},
		{
			name: "success without message",
			line: "A002 Success",
			tag:  "A002",
			body: Success{},
		},
		{
			name: "tagged error",
			line: "A000 Error Duplicate",
			tag:  "A000",
			body: Error{Code: CodeDuplicate},
		},
		{
			name: "untagged error",
			line: "* Error BadCommand",
			tag:  "",
			body: Error{Code: CodeBadCommand},
		},
		{
			name: "recv push",
			line: `* Recv Dessera "How are you today?"`,
			tag:  "",
			body: Recv{Sender: "Dessera", Message: "How are you today?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse(tt.line)
			if err != nil {
				t.Fatalf("ParseResponse(%q) error: %v", tt.line, err)
			}
			if resp.Tag != tt.tag {
				t.Errorf("tag = %q, want %q", resp.Tag, tt.tag)
			}
			if resp.Body != tt.body {
				t.Errorf("body = %#v, want %#v", resp.Body, tt.body)
			}
		})
	}
}

func TestParseResponse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty line", ""},
		{"tag only", "A000"},
		{"unknown kind", "A000 Shout hi"},
		{"error without code", "A000 Error"},
		{"error with lowercase code", "A000 Error duplicate"},
		{"error with unknown code", "A000 Error Teapot"},
		{"recv missing message", "* Recv Dessera"},
		{"success with extra operands", "A0 Success a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseResponse(tt.line); err == nil {
				t.Errorf("ParseResponse(%q) succeeded, want error", tt.line)
			}
		})
	}
}

func TestResponseRender(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{
			name: "success round trips to itself",
			resp: NewSuccess("A000", "Dessera"),
			want: "A000 Success Dessera",
		},
		{
			name: "bare success",
			resp: NewSuccess("A002", ""),
			want: "A002 Success",
		},
		{
			name: "recv renders star tag and quotes message",
			resp: NewRecv("Sender", "Complex  Message"),
			want: `* Recv Sender "Complex  Message"`,
		},
		{
			name: "untagged error",
			resp: NewError("", CodeBadCommand),
			want: "* Error BadCommand",
		},
		{
			name: "tagged error",
			resp: NewError("X0", CodeNotFound),
			want: "X0 Error NotFound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Render(); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestResponseRoundTrip renders then reparses every body kind.
func TestResponseRoundTrip(t *testing.T) {
	resps := []Response{
		NewSuccess("A0", "Scarlet"),
		NewSuccess("A1", ""),
		NewError("A2", CodeUnauthorized),
		NewError("", CodeBadCommand),
		NewRecv("Dessera", "two  spaces"),
	}

	for _, resp := range resps {
		got, err := ParseResponse(resp.Render())
		if err != nil {
			t.Fatalf("reparse %q: %v", resp.Render(), err)
		}
		if got != resp {
			t.Errorf("round trip %#v -> %q -> %#v", resp, resp.Render(), got)
		}
	}
}
