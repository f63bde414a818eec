package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	salessvc "github.com/vladislavdragonenkov/sales/internal/service/sales"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	logger := log.WithField("test", "dependencies")

	deps, err := initRuntimeDependencies(context.Background(), DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer deps.Close(logger)

	if deps.Repo == nil {
		t.Error("expected repository to be initialized")
	}
	if deps.Publisher == nil {
		t.Error("expected event publisher to be initialized")
	}
	if deps.Service == nil {
		t.Error("expected sales service to be initialized")
	}
	if deps.Metrics == nil {
		t.Error("expected metrics to be initialized")
	}
	if deps.Store != nil {
		t.Error("expected nil postgres store for memory driver")
	}
}

func TestInitRuntimeDependencies_ServiceIsWired(t *testing.T) {
	logger := log.WithField("test", "dependencies")

	deps, err := initRuntimeDependencies(context.Background(), DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer deps.Close(logger)

	sale, err := deps.Service.Create(salessvc.CreateSaleInput{
		SaleNumber:   "SALE-DEPS-1",
		SaleDate:     time.Now().UTC(),
		CustomerID:   "customer-1",
		CustomerName: "ООО Ромашка",
		BranchID:     "branch-msk",
		BranchName:   "Москва",
		Items: []salessvc.ItemInput{
			{ProductID: "product-1", ProductName: "Кабель HDMI", Quantity: 2, UnitPrice: decimal.NewFromInt(300)},
		},
	})
	if err != nil {
		t.Fatalf("create sale through wired service: %v", err)
	}

	stored, err := deps.Repo.Get(sale.ID)
	if err != nil {
		t.Fatalf("sale must be visible through the shared repository: %v", err)
	}
	if stored.SaleNumber != "SALE-DEPS-1" {
		t.Errorf("sale number = %q, want SALE-DEPS-1", stored.SaleNumber)
	}
}
