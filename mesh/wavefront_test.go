package mesh

import (
	"reflect"
	"strings"
	"testing"
)

func TestSelectVertexIndex(t *testing.T) {
	specs := []struct {
		token string
		exp   int
	}{
		{"1", 0},
		{"3/1", 2},
		{"2//5", 1},
		{"4/2/7", 3},
		{"-1", 3},
		{"-4", 0},
	}

	for _, spec := range specs {
		index, err := selectVertexIndex(spec.token, 4)
		if err != nil {
			t.Fatalf("unexpected error for token %q: %v", spec.token, err)
		}
		if index != spec.exp {
			t.Fatalf("expected token %q to select vertex %d; got %d", spec.token, spec.exp, index)
		}
	}

	for _, token := range []string{"0", "5", "-5", "abc"} {
		if _, err := selectVertexIndex(token, 4); err == nil {
			t.Fatalf("expected token %q to produce an error", token)
		}
	}
}

func TestVec3Parser(t *testing.T) {
	expError := `unsupported syntax for "v"; expected 3 arguments; got 1`
	_, err := parseVec3([]string{"v", "1"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseVec3([]string{"v", "1", "not-a-float", "2"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseVec3([]string{"v", "1", "-2", "0.5"})
	if err != nil {
		t.Fatal(err)
	}
	expVal := [3]float32{1, -2, 0.5}
	if v != expVal {
		t.Fatalf("expected parsed value to be %v; got %v", expVal, v)
	}
}

func TestWavefrontReader(t *testing.T) {
	payload := `
# a unit quad and a triangle using relative indices
mtllib foo.mtl
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
usemtl bar
f 1//1 2//1 3//1 4//1
v 0 0 1
f -1 -4 -3
`

	m, err := newWavefrontReader().Read("quad", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}

	if m.NumVertices() != 5 {
		t.Fatalf("expected 5 vertices; got %d", m.NumVertices())
	}

	expFaces := []uint32{
		0, 1, 2,
		0, 2, 3,
		4, 1, 2,
	}
	if !reflect.DeepEqual(m.Faces(), expFaces) {
		t.Fatalf("expected faces %v; got %v", expFaces, m.Faces())
	}
}

func TestWavefrontReaderErrors(t *testing.T) {
	specs := []struct {
		payload  string
		expError string
	}{
		{"v 1 2", `test:1: unsupported syntax for "v"; expected 3 arguments; got 2`},
		{"v 0 0 0\nf 1 1", `test:2: unsupported syntax for "f"; expected at least 3 arguments; got 2`},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4", `test:4: vertex index 4 out of bounds`},
	}

	for _, spec := range specs {
		_, err := newWavefrontReader().Read("test", strings.NewReader(spec.payload))
		if err == nil || err.Error() != spec.expError {
			t.Fatalf("expected to get: %s; got %v", spec.expError, err)
		}
	}
}
