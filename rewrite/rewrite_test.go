package rewrite

import (
	"testing"

	"github.com/jonwraymond/inspectrepl/jsparse"
)

func TestTopLevelAwait(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "const binding",
			src:  "const x = await f();",
			want: "let x;\n(async () => {\nvoid (x = await f());\n})()",
		},
		{
			name: "trailing expression is returned",
			src:  "await sleep(10)",
			want: "(async () => {\nreturn (await sleep(10));\n})()",
		},
		{
			name: "var keeps its kind",
			src:  "var a = 1, b; await a",
			want: "var a, b;\n(async () => {\nvoid (a = 1);\nreturn (await a);\n})()",
		},
		{
			name: "destructuring",
			src:  "let {a, b: [c]} = await load()",
			want: "let a, c;\n(async () => {\nvoid ({a, b: [c]} = await load());\n})()",
		},
		{
			name: "function hoisted to the front",
			src:  "await use(); function use() { return 1 }",
			want: "var use;\n(async () => {\nuse = function use() { return 1 };\nawait use();\n})()",
		},
		{
			name: "class",
			src:  "class A {}; await A",
			want: "let A;\n(async () => {\nA = class A {};\n;\nreturn (await A);\n})()",
		},
		{
			name: "for await",
			src:  "for await (const v of gen()) log(v)",
			want: "(async () => {\nfor await (const v of gen()) log(v);\n})()",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TopLevelAwait(tt.src)
			if !ok {
				t.Fatalf("TopLevelAwait(%q) not rewritten", tt.src)
			}
			if got != tt.want {
				t.Errorf("TopLevelAwait(%q) =\n%s\nwant\n%s", tt.src, got, tt.want)
			}
		})
	}
}

func TestTopLevelAwait_OutputParses(t *testing.T) {
	for _, src := range []string{
		"const x = await f();",
		"let {a, b: [c]} = await load()",
		"await use(); function use() { return 1 }",
	} {
		got, ok := TopLevelAwait(src)
		if !ok {
			t.Fatalf("TopLevelAwait(%q) not rewritten", src)
		}
		if _, err := jsparse.ParseStrict(got); err != nil {
			t.Errorf("rewrite of %q does not parse: %v\n%s", src, err, got)
		}
	}
}

func TestTopLevelAwait_NoRewrite(t *testing.T) {
	for _, src := range []string{
		"1 + 1",
		"async function f() { await g() }",
		"const h = async () => await g()",
		"await (",
		"",
	} {
		got, ok := TopLevelAwait(src)
		if ok {
			t.Errorf("TopLevelAwait(%q) rewrote to %q", src, got)
		}
		if got != src {
			t.Errorf("TopLevelAwait(%q) changed source to %q", src, got)
		}
	}
}
