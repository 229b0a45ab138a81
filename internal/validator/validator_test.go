package validator

import (
	"strings"
	"testing"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
	"go.eggybyte.com/egg/rpcgen/internal/schema"
	"go.eggybyte.com/egg/rpcgen/internal/testingx"
)

func orderDefinition() *schema.Definition {
	return &schema.Definition{
		ProjectName: "order",
		Package:     "order",
		Source:      "order.proto",
		Messages: []*schema.Message{
			{Name: "GetOrderRequest", Line: 9, Fields: []*schema.Field{
				{Name: "id", Type: "string", Position: 1, Line: 10},
			}},
			{Name: "Order", Line: 13, Fields: []*schema.Field{
				{Name: "id", Type: "string", Position: 1, Line: 14},
				{Name: "total", Type: "double", Position: 2, Line: 15},
			}},
		},
		Services: []*schema.Service{
			{Name: "OrderService", Line: 5, Methods: []*schema.Method{
				{Name: "GetOrder", RequestType: "GetOrderRequest", ResponseType: "Order", Line: 6},
			}},
		},
	}
}

func TestValidate_Success(t *testing.T) {
	def := orderDefinition()

	v, err := Validate(def)
	testingx.AssertNoError(t, err)

	if v.ProjectName() != "order" {
		t.Errorf("Expected project order, got %s", v.ProjectName())
	}

	def.Messages[0].Name = "Mutated"
	if v.Definition().Messages[0].Name != "GetOrderRequest" {
		t.Error("Validated model must not change when the input definition is mutated")
	}
}

func TestValidate_Nil(t *testing.T) {
	_, err := Validate(nil)
	testingx.AssertCode(t, err, errors.CodeValidation)
}

func TestValidate_UnknownRequestType(t *testing.T) {
	def := orderDefinition()
	def.Services[0].Methods[0].RequestType = "UnknownType"

	v, err := Validate(def)
	if v != nil {
		t.Error("Validate must not return a model on failure")
	}
	testingx.AssertCode(t, err, errors.CodeValidation)
	testingx.AssertFinding(t, err, `"UnknownType"`)

	findings := errors.FindingsOf(err)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %v", findings)
	}
	if findings[0].Path != "service OrderService.method GetOrder" || findings[0].Line != 6 {
		t.Errorf("Unexpected finding location: %s", findings[0])
	}
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *schema.Definition)
		want   string
	}{
		{"empty project name", func(d *schema.Definition) { d.ProjectName = "" }, "project name is empty"},
		{"project name with separator", func(d *schema.Definition) { d.ProjectName = "a/b" }, "path separator"},
		{"project name with spaces", func(d *schema.Definition) { d.ProjectName = "my order" }, "must start with a letter"},
		{"no services", func(d *schema.Definition) { d.Services = nil }, "no services"},
		{"empty message name", func(d *schema.Definition) { d.Messages[1].Name = "" }, "message name is empty"},
		{"duplicate message", func(d *schema.Definition) { d.Messages[1].Name = "GetOrderRequest" }, "already declared at line 9"},
		{"message file collision", func(d *schema.Definition) {
			d.Messages = append(d.Messages,
				&schema.Message{Name: "OrderID", Line: 20},
				&schema.Message{Name: "OrderId", Line: 21})
		}, "both generate order_id.go"},
		{"duplicate field", func(d *schema.Definition) { d.Messages[1].Fields[1].Name = "id" }, "field id is already declared"},
		{"go field collision", func(d *schema.Definition) { d.Messages[1].Fields[1].Name = "Id" }, "both map to Go field ID"},
		{"zero position", func(d *schema.Definition) { d.Messages[1].Fields[1].Position = 0 }, "must be positive"},
		{"too large position", func(d *schema.Definition) { d.Messages[1].Fields[1].Position = 1 << 29 }, "exceeds"},
		{"duplicate position", func(d *schema.Definition) { d.Messages[1].Fields[1].Position = 1 }, "already used by id"},
		{"unresolved field type", func(d *schema.Definition) { d.Messages[1].Fields[1].Type = "Money" }, `type "Money" is not defined`},
		{"bad map key", func(d *schema.Definition) {
			d.Messages[1].Fields[1].KeyType = "double"
		}, "map key type"},
		{"duplicate service", func(d *schema.Definition) {
			d.Services = append(d.Services, &schema.Service{Name: "OrderService", Line: 30, Methods: d.Services[0].Methods})
		}, "service OrderService is already declared"},
		{"reserved service file", func(d *schema.Definition) { d.Services[0].Name = "Invoker" }, "reserved"},
		{"service without methods", func(d *schema.Definition) { d.Services[0].Methods = nil }, "declares no methods"},
		{"duplicate method", func(d *schema.Definition) {
			d.Services[0].Methods = append(d.Services[0].Methods, &schema.Method{Name: "GetOrder", RequestType: "Order", ResponseType: "Order", Line: 7})
		}, "method GetOrder is already declared"},
		{"go method collision", func(d *schema.Definition) {
			d.Services[0].Methods = append(d.Services[0].Methods, &schema.Method{Name: "get_order", RequestType: "Order", ResponseType: "Order", Line: 7})
		}, "both map to Go method GetOrder"},
		{"service interface collision", func(d *schema.Definition) {
			d.Services = append(d.Services, &schema.Service{Name: "OrderServiceMethods", Line: 30, Methods: d.Services[0].Methods})
		}, "OrderServiceMethods generates Go identifier OrderServiceMethods in package service, already declared by OrderService"},
		{"server constructor collision", func(d *schema.Definition) {
			d.Services = append(d.Services, &schema.Service{Name: "NewOrderService", Line: 30, Methods: d.Services[0].Methods})
		}, "Go identifier NewOrderServiceServer in package server"},
		{"scalar message name", func(d *schema.Definition) {
			d.Messages = append(d.Messages, &schema.Message{Name: "string", Line: 20})
		}, "message name string is a scalar type"},
		{"scalar response", func(d *schema.Definition) { d.Services[0].Methods[0].ResponseType = "string" }, "must be a message"},
		{"unresolved response", func(d *schema.Definition) { d.Services[0].Methods[0].ResponseType = "Receipt" }, `response type "Receipt" is not defined`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := orderDefinition()
			tt.mutate(def)

			_, err := Validate(def)
			testingx.AssertCode(t, err, errors.CodeValidation)
			testingx.AssertFinding(t, err, tt.want)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	def := orderDefinition()
	def.Messages[1].Fields[1].Type = "Money"
	def.Services[0].Methods[0].RequestType = "UnknownType"
	def.Messages[0].Fields[0].Position = -1

	_, err := Validate(def)
	findings := errors.FindingsOf(err)
	if len(findings) != 3 {
		t.Fatalf("Expected 3 findings, got %d: %v", len(findings), findings)
	}

	for i := 1; i < len(findings); i++ {
		if findings[i-1].Line > findings[i].Line {
			t.Errorf("Findings should be in source order, got %v", findings)
		}
	}

	if !strings.Contains(err.Error(), "3 problem(s)") {
		t.Errorf("Expected problem count in %q", err.Error())
	}
}
