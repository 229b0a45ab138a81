package generator

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"go.eggybyte.com/egg/rpcgen/internal/config"
	"go.eggybyte.com/egg/rpcgen/internal/errors"
	"go.eggybyte.com/egg/rpcgen/internal/testingx"
)

const shopSchema = `syntax = "proto3";
package shop;

message ItemID {
  string value = 1;
}

message Item {
  ItemID id = 1;
  repeated string tags = 2;
  map<string, int64> stock = 3;
  map<int32, Item> variants = 4;
  oneof price {
    double amount = 5;
    string coupon = 6;
  }
  bytes blob = 7;
  .shop.Item parent = 8;
}

message ListItemsRequest {
  int32 page_size = 1;
  string page_token = 2;
}

message ListItemsResponse {
  repeated Item items = 1;
  string next_page_token = 2;
}

service Catalog {
  rpc GetItem(ItemID) returns (Item);
  rpc ListItems(ListItemsRequest) returns (ListItemsResponse);
}

service Inventory {
  rpc Reserve(Item) returns (ItemID);
}
`

// TestGenerate_ScaffoldBuilds compiles a generated multi-service project with
// the go command, which catches type errors a syntax check cannot.
func TestGenerate_ScaffoldBuilds(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping scaffold build in short mode")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not available")
	}

	out := t.TempDir()
	cfg := config.RunConfig{
		InputPath:  testingx.WriteSchema(t, "shop.proto", shopSchema),
		OutputRoot: out,
		Options:    config.Defaults(),
	}

	report, err := Generate(context.Background(), cfg)
	testingx.AssertNoError(t, err)
	if report.Written != 15 {
		t.Errorf("Expected 15 written files, got %d", report.Written)
	}

	cmd := exec.Command(goBin, "build", "./...")
	cmd.Dir = filepath.Join(out, "shop")
	cmd.Env = append(os.Environ(), "GOWORK=off", "GOFLAGS=", "GOPROXY=off", "GOTOOLCHAIN=local")
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Generated scaffold does not build: %v\n%s", err, output)
	}
}

func TestGenerate_GoIdentifierCollision(t *testing.T) {
	src := strings.Replace(testingx.OrderSchema, "service OrderService {",
		"service OrderServiceMethods {\n  rpc Ping(Order) returns (Order);\n}\n\nservice OrderService {", 1)
	out := filepath.Join(t.TempDir(), "out")

	_, err := Generate(context.Background(), runConfig(t, src, out))
	assertStage(t, err, StageValidate, errors.CodeValidation)
	testingx.AssertFinding(t, err, "Go identifier OrderServiceMethods in package service")

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("A validation failure must not create the output directory")
	}
}
