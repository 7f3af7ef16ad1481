package graphics

import "testing"

func TestBuiltinsCoverEveryType(t *testing.T) {
	for typ := Point; typ < typeCount; typ++ {
		desc, ok := builtins[typ]
		if !ok {
			t.Fatalf("no builtin description for %s", typ)
		}
		if desc.Stride == 0 {
			t.Errorf("%s: stride must be non-zero", typ)
		}
		if len(desc.Attributes) == 0 {
			t.Errorf("%s: no vertex attributes", typ)
		}
		if desc.VertexShaderPath == "" || desc.FragmentShaderPath == "" {
			t.Errorf("%s: shader paths not resolved", typ)
		}
	}
}

func TestTypeStringUnknown(t *testing.T) {
	if got := Type(-1).String(); got != "Unknown" {
		t.Errorf("Type(-1).String() = %q, want Unknown", got)
	}
	if got := typeCount.String(); got != "Unknown" {
		t.Errorf("typeCount.String() = %q, want Unknown", got)
	}
}

func TestShaderOwnerResolvesBuiltinPaths(t *testing.T) {
	desc := builtins[Point]
	typ, ok := shaderOwner(desc.VertexShaderPath)
	if !ok || typ != Point {
		t.Errorf("shaderOwner(%s) = (%s, %v), want (Point, true)", desc.VertexShaderPath, typ, ok)
	}

	if _, ok := shaderOwner("assets/shaders/nonexistent.vert.spv"); ok {
		t.Errorf("shaderOwner should not match an unowned path")
	}
}
