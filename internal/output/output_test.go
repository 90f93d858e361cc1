package output

import (
	"bytes"
	"context"
	"os"
	"testing"
)

func TestWithPrinter_FromContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		ctx := WithPrinter(context.Background(), &buf)
		p := FromContext(ctx)
		if p == nil {
			t.Fatal("FromContext returned nil")
		}
		if p.Writer() != &buf {
			t.Error("Writer() should return the buffer passed to WithPrinter")
		}
	})

	t.Run("default to stdout when not set", func(t *testing.T) {
		t.Parallel()
		p := FromContext(context.Background())
		if p == nil {
			t.Fatal("FromContext returned nil on empty context")
		}
		if p.Writer() != os.Stdout {
			t.Error("Writer() should default to os.Stdout")
		}
	})
}

func TestPrinter_Writes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		write func(p *Printer)
		want  string
	}{
		{"Print", func(p *Printer) { p.Print("notes", " ", "OK") }, "notes OK"},
		{"Printf", func(p *Printer) { p.Printf("%d repos", 3) }, "3 repos"},
		{"Println", func(p *Printer) { p.Println("/home/me/Git/notes"); p.Println("done") }, "/home/me/Git/notes\ndone\n"},
		{"Writer", func(p *Printer) { _, _ = p.Writer().Write([]byte("raw")) }, "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.write(FromContext(WithPrinter(context.Background(), &buf)))
			if got := buf.String(); got != tt.want {
				t.Errorf("wrote %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrinter_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := New(&buf)

	if err := p.JSON(map[string]int{"ahead": 2}); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	want := "{\n  \"ahead\": 2\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("JSON() wrote %q, want %q", got, want)
	}
}

func TestPrinter_IsTerminal(t *testing.T) {
	t.Parallel()

	if New(&bytes.Buffer{}).IsTerminal() {
		t.Error("a buffer is not a terminal")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if New(f).IsTerminal() {
		t.Error("a regular file is not a terminal")
	}
}
