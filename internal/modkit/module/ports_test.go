package module

import (
	"testing"

	phttp "indexa/internal/platform/net/http"
)

type greeter interface{ Greet() string }

type greeterImpl struct{}

func (greeterImpl) Greet() string { return "hi" }

type fakeModule struct {
	name  string
	ports any
}

func (f fakeModule) MountRoutes(phttp.Router) {}
func (f fakeModule) Ports() any               { return f.ports }
func (f fakeModule) Name() string             { return f.name }

func TestPortsOf_DirectImplement(t *testing.T) {
	m := fakeModule{name: "direct", ports: greeterImpl{}}

	g, ok := PortsOf[greeter](m)
	must(t, ok, "expected direct assertion to work")
	if g.Greet() != "hi" {
		t.Fatalf("unexpected greeting %q", g.Greet())
	}
}

func TestPortsOf_StructFieldWalk(t *testing.T) {
	type bundle struct {
		Service greeter
		Other   int
	}
	m := fakeModule{name: "bundle", ports: bundle{Service: greeterImpl{}}}

	g, ok := PortsOf[greeter](m)
	must(t, ok, "expected field walk to find the port")
	if g.Greet() != "hi" {
		t.Fatalf("unexpected greeting %q", g.Greet())
	}
}

func TestPortsOf_NilPortsReturnsFalse(t *testing.T) {
	m := fakeModule{name: "empty"}

	_, ok := PortsOf[greeter](m)
	if ok {
		t.Fatal("expected ok=false for nil ports")
	}
}

func TestMustPortsOf_PanicsWhenMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing port")
		}
	}()
	m := fakeModule{name: "missing", ports: struct{ N int }{N: 1}}
	_ = MustPortsOf[greeter](m)
}
