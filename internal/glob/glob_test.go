package glob

import "testing"

func mustCompile(t *testing.T, pattern string) *Glob {
	t.Helper()
	g, err := Compile(pattern)
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	return g
}

func TestLiteralMatch(t *testing.T) {
	g := mustCompile(t, "hello")
	cases := map[string]bool{"hello": true, "Hello": false, "hello!": false, "hell": false}
	for in, want := range cases {
		if got := g.Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStarMatch(t *testing.T) {
	g := mustCompile(t, "1D*")
	for in, want := range map[string]bool{"1D": true, "1D1": true, "1D123": true, "2D1": false} {
		if got := g.Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}

	g2 := mustCompile(t, "*test*")
	for in, want := range map[string]bool{"test": true, "mytest": true, "testcase": true, "mytestcase": true} {
		if got := g2.Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestQuestionMatch(t *testing.T) {
	g := mustCompile(t, "te?t")
	for in, want := range map[string]bool{"test": true, "text": true, "tet": false, "testt": false} {
		if got := g.Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCharClass(t *testing.T) {
	g := mustCompile(t, "[abc]")
	for in, want := range map[string]bool{"a": true, "b": true, "c": true, "d": false, "ab": false} {
		if got := g.Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCharClassNegated(t *testing.T) {
	g := mustCompile(t, "[!abc]")
	for in, want := range map[string]bool{"a": false, "b": false, "d": true, "x": true} {
		if got := g.Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}

	g2 := mustCompile(t, "[^abc]")
	if g2.Match("a") {
		t.Error("expected [^abc] to reject a")
	}
	if !g2.Match("d") {
		t.Error("expected [^abc] to accept d")
	}
}

func TestCharClassRange(t *testing.T) {
	g := mustCompile(t, "[a-z]")
	for in, want := range map[string]bool{"a": true, "m": true, "z": true, "A": false, "0": false} {
		if got := g.Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCharClassInvalidRangeDegradesToLiterals(t *testing.T) {
	g := mustCompile(t, "[z-a]")
	if !g.Match("z") || !g.Match("-") || !g.Match("a") {
		t.Error("invalid range should degrade to the three literal characters")
	}
	if g.Match("m") {
		t.Error("invalid range should not expand to a character set")
	}
}

func TestEscape(t *testing.T) {
	g := mustCompile(t, `test\*`)
	for in, want := range map[string]bool{"test*": true, "test": false, "testx": false} {
		if got := g.Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}

	g2 := mustCompile(t, `\[test\]`)
	if !g2.Match("[test]") {
		t.Error("expected escaped brackets to match literally")
	}
}

func TestRejectRecursiveGlob(t *testing.T) {
	for _, p := range []string{"**", "a**b"} {
		_, err := Compile(p)
		var ce *CompileError
		if err == nil {
			t.Errorf("expected error for %q", p)
			continue
		}
		if ce2, ok := err.(*CompileError); !ok || ce2.Kind != ErrRecursiveGlob {
			t.Errorf("expected ErrRecursiveGlob for %q, got %v", p, err)
		}
		_ = ce
	}
}

func TestRejectBraceExpansion(t *testing.T) {
	_, err := Compile("{a,b}")
	if err == nil {
		t.Fatal("expected error")
	}
	if ce, ok := err.(*CompileError); !ok || ce.Kind != ErrBraceExpansion {
		t.Errorf("expected ErrBraceExpansion, got %v", err)
	}
}

func TestRejectExtglob(t *testing.T) {
	for _, p := range []string{"@(foo)", "+(foo)"} {
		_, err := Compile(p)
		if err == nil {
			t.Fatalf("expected error for %q", p)
		}
		if ce, ok := err.(*CompileError); !ok || ce.Kind != ErrExtglobNotAllowed {
			t.Errorf("expected ErrExtglobNotAllowed for %q, got %v", p, err)
		}
	}
}

func TestUnclosedBracket(t *testing.T) {
	_, err := Compile("[abc")
	if err == nil {
		t.Fatal("expected error")
	}
	if ce, ok := err.(*CompileError); !ok || ce.Kind != ErrUnclosedBracket {
		t.Errorf("expected ErrUnclosedBracket, got %v", err)
	}
}

func TestTrailingBackslash(t *testing.T) {
	_, err := Compile(`test\`)
	if err == nil {
		t.Fatal("expected error")
	}
	if ce, ok := err.(*CompileError); !ok || ce.Kind != ErrTrailingBackslash {
		t.Errorf("expected ErrTrailingBackslash, got %v", err)
	}
}

func TestComplexPattern(t *testing.T) {
	g := mustCompile(t, "team-[a-z]*-2024")
	for in, want := range map[string]bool{
		"team-a-2024":        true,
		"team-alpha-2024":    true,
		"team-z-project-2024": true,
		"team-A-2024":        false,
		"team-1-2024":        false,
	} {
		if got := g.Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestEmptyBracket(t *testing.T) {
	_, err := Compile("[]")
	if err == nil {
		t.Fatal("expected error")
	}
	if ce, ok := err.(*CompileError); !ok || ce.Kind != ErrEmptyBracket {
		t.Errorf("expected ErrEmptyBracket, got %v", err)
	}
}
