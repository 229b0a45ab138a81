package templates

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
	"go.eggybyte.com/egg/rpcgen/internal/schema"
	"go.eggybyte.com/egg/rpcgen/internal/testingx"
)

var (
	orderMsg = &schema.Message{Name: "Order", Fields: []*schema.Field{
		{Name: "id", Type: "string", Position: 1},
		{Name: "total", Type: "double", Position: 2},
	}}
	requestMsg = &schema.Message{Name: "GetOrderRequest", Fields: []*schema.Field{
		{Name: "id", Type: "string", Position: 1},
	}}
	orderSvc = &schema.Service{Name: "OrderService", Methods: []*schema.Method{
		{Name: "GetOrder", RequestType: "GetOrderRequest", ResponseType: "Order"},
	}}
)

func contexts() map[string]Context {
	project := Context{
		"Source":            "order.proto",
		"Project":           "order",
		"Module":            "github.com/acme/order",
		"Package":           "order",
		"GoVersion":         "1.22",
		"Messages":          []*schema.Message{requestMsg, orderMsg},
		"Services":          []*schema.Service{orderSvc},
		"ConfPath":          "conf/order.yaml",
		"Host":              "0.0.0.0",
		"Port":              12345,
		"IOThreads":         4,
		"LogLevel":          "debug",
		"LogDir":            "log",
		"LogMaxFileSizeMB":  100,
		"LogSyncIntervalMS": 500,
	}
	service := Context{
		"Source":    "order.proto",
		"Module":    "github.com/acme/order",
		"Qualifier": "order.OrderService",
		"Service":   orderSvc,
	}
	return map[string]Context{
		"project/main":      project,
		"project/conf":      project,
		"project/gomod":     project,
		"project/readme":    project,
		"types/message":     {"Source": "order.proto", "Message": orderMsg},
		"service/interface": service,
		"server/stub":       service,
		"client/invoker":    {"Source": "order.proto", "Project": "order"},
		"client/stub":       service,
	}
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	testingx.AssertNoError(t, err)
	return r
}

func TestNew_IDs(t *testing.T) {
	r := newRenderer(t)

	want := []string{
		"client/invoker",
		"client/stub",
		"project/conf",
		"project/gomod",
		"project/main",
		"project/readme",
		"server/stub",
		"service/interface",
		"types/message",
	}
	if diff := cmp.Diff(want, r.IDs()); diff != "" {
		t.Errorf("Unexpected template ids (-want +got):\n%s", diff)
	}
}

func TestRender_AllTemplates(t *testing.T) {
	r := newRenderer(t)

	for id, ctx := range contexts() {
		t.Run(id, func(t *testing.T) {
			first, err := r.Render(id, ctx)
			testingx.AssertNoError(t, err)
			if strings.TrimSpace(first) == "" {
				t.Fatal("Rendered output should not be empty")
			}

			second, err := r.Render(id, ctx)
			testingx.AssertNoError(t, err)
			if first != second {
				t.Error("Rendering the same input twice should give identical output")
			}
		})
	}
}

func TestRender_Message(t *testing.T) {
	r := newRenderer(t)

	out, err := r.Render("types/message", contexts()["types/message"])
	testingx.AssertNoError(t, err)

	for _, want := range []string{
		"// Code generated by rpcgen from order.proto. DO NOT EDIT.",
		"package types",
		"type Order struct {",
		"Total float64",
		"`json:\"total,omitempty\"` // field 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestRender_Service(t *testing.T) {
	r := newRenderer(t)
	ctx := contexts()["client/stub"]

	iface, err := r.Render("service/interface", ctx)
	testingx.AssertNoError(t, err)
	if !strings.Contains(iface, "GetOrder(ctx context.Context, req *types.GetOrderRequest) (*types.Order, error)") {
		t.Errorf("Unexpected interface output:\n%s", iface)
	}
	if !strings.Contains(iface, `"order.OrderService.GetOrder",`) {
		t.Errorf("Expected qualified method name:\n%s", iface)
	}

	client, err := r.Render("client/stub", ctx)
	testingx.AssertNoError(t, err)
	if !strings.Contains(client, "resp := new(types.Order)") {
		t.Errorf("Unexpected client output:\n%s", client)
	}

	stub, err := r.Render("server/stub", ctx)
	testingx.AssertNoError(t, err)
	if !strings.Contains(stub, "func (s *OrderServiceServer) GetOrder(") {
		t.Errorf("Unexpected server output:\n%s", stub)
	}
}

func TestRender_ProjectFiles(t *testing.T) {
	r := newRenderer(t)
	ctx := contexts()["project/gomod"]

	gomod, err := r.Render("project/gomod", ctx)
	testingx.AssertNoError(t, err)
	if gomod != "module github.com/acme/order\n\ngo 1.22\n" {
		t.Errorf("Unexpected go.mod:\n%q", gomod)
	}

	conf, err := r.Render("project/conf", ctx)
	testingx.AssertNoError(t, err)
	for _, want := range []string{"port: 12345", "io_threads: 4", `level: "debug"`, "sync_interval_ms: 500"} {
		if !strings.Contains(conf, want) {
			t.Errorf("Expected %q in conf:\n%s", want, conf)
		}
	}
}

func TestRender_UnknownID(t *testing.T) {
	r := newRenderer(t)

	_, err := r.Render("types/enum", Context{})
	testingx.AssertCode(t, err, errors.CodeRender)
	if !strings.Contains(err.Error(), `"types/enum"`) {
		t.Errorf("Error should name the template id, got %v", err)
	}
}

func TestRender_MissingKey(t *testing.T) {
	r := newRenderer(t)

	_, err := r.Render("types/message", Context{"Source": "order.proto"})
	testingx.AssertCode(t, err, errors.CodeRender)

	msg := err.Error()
	if !strings.Contains(msg, "types/message") || !strings.Contains(msg, `"Message"`) {
		t.Errorf("Error should name the template and the key, got %v", err)
	}
}

func TestRender_InvalidGo(t *testing.T) {
	r, err := NewFromFS(fstest.MapFS{
		"broken.go.tmpl": {Data: []byte("package {{.Name}}\n\nfunc {\n")},
		"plain.txt.tmpl": {Data: []byte("hello {{.Name}}\n")},
	})
	testingx.AssertNoError(t, err)

	_, err = r.Render("broken", Context{"Name": "x"})
	testingx.AssertCode(t, err, errors.CodeRender)

	out, err := r.Render("plain", Context{"Name": "x"})
	testingx.AssertNoError(t, err)
	if out != "hello x\n" {
		t.Errorf("Non-Go output should be returned verbatim, got %q", out)
	}
}

func TestNewFromFS_ParseError(t *testing.T) {
	_, err := NewFromFS(fstest.MapFS{
		"bad.txt.tmpl": {Data: []byte("{{if}}")},
	})
	testingx.AssertCode(t, err, errors.CodeRender)
}

func TestGoType(t *testing.T) {
	tests := []struct {
		field *schema.Field
		want  string
	}{
		{&schema.Field{Type: "double"}, "float64"},
		{&schema.Field{Type: "sint32"}, "int32"},
		{&schema.Field{Type: "fixed64"}, "uint64"},
		{&schema.Field{Type: "bytes"}, "[]byte"},
		{&schema.Field{Type: "Order"}, "*Order"},
		{&schema.Field{Type: "string", Repeated: true}, "[]string"},
		{&schema.Field{Type: "Order", Repeated: true}, "[]*Order"},
		{&schema.Field{Type: "int64", KeyType: "string"}, "map[string]int64"},
		{&schema.Field{Type: "Order", KeyType: "uint32"}, "map[uint32]*Order"},
	}

	for _, tt := range tests {
		if got := GoType(tt.field); got != tt.want {
			t.Errorf("GoType(%+v) = %q, want %q", tt.field, got, tt.want)
		}
	}

	if got := GoRef("GetOrderRequest"); got != "*types.GetOrderRequest" {
		t.Errorf("GoRef = %q", got)
	}
}
