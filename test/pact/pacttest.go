//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "campus-canteen-api"
	ConsumerName = "canteen-web"

	StateMenuItemExists  = "menu item 101 exists"
	StateMenuItemMissing = "no menu item 404"
	StateCustomerSession = "a lecturer is signed in and menu item 101 has stock"
	StateNoSession       = "nobody is signed in"
)

const (
	ExistingMenuItemID int64 = 101
	MissingMenuItemID  int64 = 404

	CustomerEmail = "pact.lecturer@campus.lk"
	CustomerToken = "pact-session-token"
)

// The seeded menu item; prices travel as decimal strings.
const (
	ExampleDishName  = "Chicken Kottu"
	ExampleDishPrice = "450"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderRequest is the body the web client sends to place an order.
func ExampleOrderRequest() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"menuItem": ExistingMenuItemID, "quantity": 2, "specialInstructions": "less spicy"},
		},
		"orderType":     "takeaway",
		"paymentMethod": "cash",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
